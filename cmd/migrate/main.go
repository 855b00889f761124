package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"pulsechat/config"
	"pulsechat/internal/domain/chat"
	"pulsechat/internal/domain/contact"
	"pulsechat/internal/domain/message"
	"pulsechat/internal/domain/user"
	"pulsechat/pkg/database"
)

const usage = `
PulseChat - Database CLI Tool

Usage:
  migrate [command]

Commands:
  up          Run GORM auto-migrations for all tables
  status      Show database connection status

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go status
`

func main() {
	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)

	cfg := config.LoadConfig()
	database.Connect(cfg)
	defer database.Close()

	switch command {
	case "up":
		runMigrationsUp()
	case "status":
		showStatus()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp() {
	log.Println("Running migrations...")

	if err := database.DB.AutoMigrate(
		&user.User{},
		&chat.Chat{},
		&message.Message{},
		&message.MessageReaction{},
		&message.MessageUserState{},
		&contact.Contact{},
	); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migrations completed successfully")
}

func showStatus() {
	log.Println("Checking database status...")

	if err := database.Ping(); err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Database connection: OK")

	tables := []string{"users", "chats", "messages", "message_reactions", "message_user_states", "contacts"}
	for _, table := range tables {
		exists, err := database.TableExists(table)
		if err != nil {
			log.Printf("Error checking table %s: %v", table, err)
			continue
		}
		if exists {
			log.Printf("Table %s: present", table)
		} else {
			log.Printf("Table %s: missing", table)
		}
	}
}
