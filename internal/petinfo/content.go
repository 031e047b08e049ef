package petinfo

// AdoptionGuide は里親プロセスの案内コンテンツ。
type AdoptionGuide struct {
	Process      []string          `json:"process"`
	Requirements map[string]string `json:"requirements"`
	Fees         map[string]string `json:"fees"`
}

// careInstructionsFor はカテゴリに応じたケア方法の説明を返す。
func careInstructionsFor(category string) string {
	instructions := map[string]string{
		"Dogs":       "Feed twice daily, provide fresh water, daily exercise, regular grooming",
		"Cats":       "Feed according to age, clean litter daily, provide toys, regular vet visits",
		"Fish":       "Feed once or twice daily, maintain water temperature, regular water changes",
		"Birds":      "Fresh food and water daily, cage cleaning weekly, social interaction",
		"Small Pets": "Fresh food and water daily, cage cleaning regularly, handling with care",
	}

	if text, ok := instructions[category]; ok {
		return text
	}
	return "Provide proper care according to species needs"
}

// careTips はカテゴリ別のペットケアのヒントを返す。
func careTips() map[string][]string {
	return map[string][]string{
		"dogs": {
			"Regular exercise is essential for dogs",
			"Provide fresh water at all times",
			"Regular vet checkups are important",
			"Socialization from young age is crucial",
		},
		"cats": {
			"Cats need mental stimulation through play",
			"Keep litter box clean",
			"Regular grooming prevents hairballs",
			"Provide scratching posts",
		},
		"fish": {
			"Maintain proper water temperature",
			"Regular water changes are essential",
			"Don't overfeed your fish",
			"Monitor pH levels regularly",
		},
		"birds": {
			"Provide variety in diet",
			"Ensure adequate cage space",
			"Social interaction is important",
			"Regular wing trimming may be needed",
		},
		"smallPets": {
			"Provide appropriate bedding",
			"Ensure proper ventilation",
			"Regular cage cleaning is essential",
			"Monitor for signs of illness",
		},
	}
}

// adoptionGuide は里親プロセスの案内を返す。
func adoptionGuide() AdoptionGuide {
	return AdoptionGuide{
		Process: []string{
			"Browse available pets",
			"Submit adoption application",
			"Meet and greet session",
			"Home visit (for some pets)",
			"Finalize adoption",
			"Post-adoption support",
		},
		Requirements: map[string]string{
			"age":        "Must be 21 or older",
			"housing":    "Pet-friendly accommodation",
			"experience": "Prior pet experience preferred",
			"commitment": "Long-term commitment required",
		},
		Fees: map[string]string{
			"dogs":      "$200-$500",
			"cats":      "$100-$300",
			"smallPets": "$50-$150",
			"birds":     "$100-$400",
		},
	}
}
