package models

import "time"

// DailyReport is the end-of-day roll-up stored in MongoDB and exported to Sheets.
type DailyReport struct {
	Date          time.Time `bson:"_id" json:"date"`
	MilkCollected float64   `bson:"milk_collected" json:"milk_collected"`
	MilkSold      float64   `bson:"milk_sold" json:"milk_sold"`
	MilkSpoilt    float64   `bson:"milk_spoilt" json:"milk_spoilt"`
	SpoilageLoss  float64   `bson:"spoilage_loss" json:"spoilage_loss"`
	Earnings      float64   `bson:"earnings" json:"earnings"`
	CurrentStock  float64   `bson:"current_stock" json:"current_stock"`
	EligibleCows  int       `bson:"eligible_cows" json:"eligible_cows"`
	BlockedCows   int       `bson:"blocked_cows" json:"blocked_cows"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}
