package amqp

import (
	"encoding/json"
	"time"
)

// LoginMessage records one login attempt.
type LoginMessage struct {
	Email    string    `json:"email"`
	Success  bool      `json:"success"`
	ClientIP string    `json:"clientIp,omitempty"`
	At       time.Time `json:"at"`
}

func NewLoginMessage(email string, success bool, clientIP string) *LoginMessage {
	return &LoginMessage{
		Email:    email,
		Success:  success,
		ClientIP: clientIP,
		At:       time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LoginMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LoginMessageFromJSON decodes a message
func LoginMessageFromJSON(data []byte) (*LoginMessage, error) {
	var msg LoginMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
