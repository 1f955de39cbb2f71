package dto

type ConversationTurn struct {
	Role    string `json:"role"`    // "user" | "model"
	Content string `json:"content"` // question | JSON intent
}
