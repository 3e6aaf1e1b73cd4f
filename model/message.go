package model

import "gorm.io/gorm"

// Message represents a direct message between two users, typically a
// nurse and one of their patients.
// @Description Message information
type Message struct {
	gorm.Model
	SenderID   uint   `json:"sender_id" gorm:"column:sender_id;index;not null" example:"2"`
	ReceiverID uint   `json:"receiver_id" gorm:"column:receiver_id;index;not null" example:"3"`
	Content    string `json:"content" gorm:"column:content;type:text;not null"`
	Read       bool   `json:"read" gorm:"column:read;default:false"`
}

// SendMessageRequest represents a message submission
// @Description Message payload
type SendMessageRequest struct {
	ReceiverID uint   `json:"receiver_id" example:"3"`
	Content    string `json:"content" example:"Bagaimana perasaan Anda setelah minum obat pagi ini?"`
}

// MessageResponse decorates a message with the display names of both parties.
type MessageResponse struct {
	Message
	SenderName   string `json:"sender_name" example:"Ani Perawat"`
	ReceiverName string `json:"receiver_name" example:"Budi Santoso"`
}
