package main

import (
	"log"

	"wavechat/config"
	"wavechat/internal/domain/call"
	"wavechat/internal/domain/contact"
	"wavechat/internal/domain/conversation"
	"wavechat/internal/domain/message"
	"wavechat/internal/domain/user"
	"wavechat/pkg/database"
)

func main() {
	cfg := config.LoadConfig()

	database.Connect(cfg)

	if err := database.DB.AutoMigrate(
		&user.User{},
		&contact.Contact{},
		&conversation.Conversation{},
		&conversation.Member{},
		&message.Message{},
		&message.Attachment{},
		&call.Call{},
		&call.CallQualityMetric{},
	); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	log.Println("Migrations applied")
}
