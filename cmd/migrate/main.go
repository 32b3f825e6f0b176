package main

import (
	"log"
	"os"

	"messenger-be/internal/model"
	"messenger-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	color.Cyan("Starting GORM migration...")

	// 3. Join tables carry their own structs so the composite keys and cascades are explicit.
	color.Yellow("Step 1: Registering join tables")
	if err := db.SetupJoinTable(&model.Chat{}, "Participants", &model.ChatMember{}); err != nil {
		color.Red("Error: chat_members join table: %v", err)
		os.Exit(1)
	}
	if err := db.SetupJoinTable(&model.Group{}, "Members", &model.GroupMember{}); err != nil {
		color.Red("Error: group_members join table: %v", err)
		os.Exit(1)
	}

	// 4. AutoMigrate All Models
	color.Yellow("Step 2: Running AutoMigrate")
	models := []interface{}{
		&model.User{},
		&model.Chat{},
		&model.ChatMember{},
		&model.Group{},
		&model.GroupMember{},
		&model.Message{},
		&model.ChatEvent{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		color.Red("Error: AutoMigrate failed: %v", err)
		os.Exit(1)
	}

	// 5. Post-Migration: constraints AutoMigrate cannot express
	color.Yellow("Step 3: Applying constraints")
	postMigrationSQL := []string{
		// A group row lives and dies with its chat.
		`DO $$ BEGIN
		   IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_groups_chat') THEN
		     ALTER TABLE groups ADD CONSTRAINT fk_groups_chat FOREIGN KEY (id) REFERENCES chats(id) ON DELETE CASCADE;
		   END IF;
		 END $$;`,
		`DO $$ BEGIN
		   IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_groups_creator') THEN
		     ALTER TABLE groups ADD CONSTRAINT fk_groups_creator FOREIGN KEY (creator_id) REFERENCES users(id) ON DELETE SET NULL;
		   END IF;
		 END $$;`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			color.Red("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	if !db.Migrator().HasIndex(&model.Message{}, model.UniqueChatClientMsg) {
		color.Red("Error: unique index %s is missing on messages", model.UniqueChatClientMsg)
		os.Exit(1)
	}

	color.Green("Success: Database migration completed")
}
