package model

import "time"

// Purchase は決済完了時に生成される購入記録を表す。
// 作成後は不変。商品名と価格は購入時点のスナップショット。
type Purchase struct {
	ID      string         `json:"id"`
	Items   []PurchaseItem `json:"items"`
	Payment PaymentRecord  `json:"paymentDetails"`
	Total   float64        `json:"total"`
	Date    time.Time      `json:"date"`
}

// PurchaseItem は購入記録内の1商品を表す。
type PurchaseItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// PaymentRecord は保存される決済情報。
// カード番号は下4桁のみ保持し、CVVは一切保存しない。
type PaymentRecord struct {
	CardLast4  string `json:"cardNumber"`
	CardName   string `json:"cardName"`
	ExpiryDate string `json:"expiryDate"`
}
