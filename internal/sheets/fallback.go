package sheets

import "festive/internal/domain/reviews"

// Fallback returns the built-in sample reviews shown while the sheet is
// unavailable. Each call returns a fresh slice.
func Fallback() []reviews.Review {
	return []reviews.Review{
		{ID: "1", Name: "Priya Sharma", StarCount: 5, EventType: reviews.EventWedding, DateOfPost: "2024-12-15",
			Review: "Excellent service for our wedding! The food was delicious and guests loved every dish. Highly recommended!"},
		{ID: "2", Name: "Rajesh Kumar", StarCount: 4, EventType: reviews.EventCorporate, DateOfPost: "2024-12-10",
			Review: "Great catering for our corporate event. Professional service and tasty food. Will book again!"},
		{ID: "3", Name: "Meera Krishnan", StarCount: 5, EventType: reviews.EventParty, DateOfPost: "2024-12-05",
			Review: "Amazing food quality and presentation. Perfect for our family celebration. Thank you!"},
		{ID: "4", Name: "Arun Patel", StarCount: 4, EventType: reviews.EventSpecial, DateOfPost: "2024-11-28",
			Review: "Good variety of dishes and reasonable service. The biryani was exceptional!"},
		{ID: "5", Name: "Kavya Reddy", StarCount: 5, EventType: reviews.EventWedding, DateOfPost: "2024-11-25",
			Review: "Outstanding catering service! Every guest complimented the food. Perfect for our special day."},
		{ID: "6", Name: "Suresh Gupta", StarCount: 4, EventType: reviews.EventCorporate, DateOfPost: "2024-11-20",
			Review: "Professional team and delicious food. Made our office party a great success."},
		{ID: "7", Name: "Lakshmi Nair", StarCount: 5, EventType: reviews.EventParty, DateOfPost: "2024-11-15",
			Review: "Fantastic experience! The team was very accommodating and the food was fresh and tasty."},
		{ID: "8", Name: "Vikram Singh", StarCount: 4, EventType: reviews.EventSpecial, DateOfPost: "2024-11-10",
			Review: "Great food and timely service. Would definitely recommend to others."},
		{ID: "9", Name: "Anita Joshi", StarCount: 5, EventType: reviews.EventWedding, DateOfPost: "2024-11-05",
			Review: "Perfect catering for our daughter's wedding. Everything was executed flawlessly!"},
		{ID: "10", Name: "Ravi Kumar", StarCount: 4, EventType: reviews.EventCorporate, DateOfPost: "2024-11-01",
			Review: "Good quality food and professional service. Impressed with the presentation."},
		{ID: "11", Name: "Deepa Menon", StarCount: 5, EventType: reviews.EventParty, DateOfPost: "2024-10-28",
			Review: "Absolutely loved the catering service. Fresh ingredients and authentic flavors!"},
		{ID: "12", Name: "Karthik Iyer", StarCount: 4, EventType: reviews.EventSpecial, DateOfPost: "2024-10-25",
			Review: "Excellent food quality and variety. The desserts were particularly amazing!"},
	}
}
