package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"himakeu/models"
	"himakeu/pkg/directory"
)

// Creates an admin credential directly against the master database. Useful
// when the auto-seeded account has been removed or a second admin is needed.
func main() {
	username := flag.String("username", "", "admin login username")
	password := flag.String("password", "", "admin password (min 6 chars)")
	name := flag.String("name", "Administrator", "full name")
	email := flag.String("email", "", "email address")
	nim := flag.String("nim", "", "member NIM")
	flag.Parse()

	if *username == "" || *password == "" || *email == "" || *nim == "" {
		fmt.Println("usage: create_admin -username U -password P -email E -nim N [-name FULLNAME]")
		os.Exit(2)
	}

	_ = godotenv.Load()
	v := viper.New()
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", 5432)
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "")
	v.SetDefault("POSTGRES_DATABASE", "himakeu_master")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.AutomaticEnv()

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		v.GetString("POSTGRES_HOST"), v.GetInt("POSTGRES_PORT"),
		v.GetString("POSTGRES_USER"), v.GetString("POSTGRES_PASSWORD"),
		v.GetString("POSTGRES_DATABASE"), v.GetString("POSTGRES_SSLMODE"))

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open master database: %v", err)
	}
	if err := db.AutoMigrate(&models.Member{}, &models.User{}); err != nil {
		log.Printf("migration warning: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	dir := directory.NewStore(db)
	member, err := dir.Register(ctx, directory.Registration{
		NIM:        *nim,
		FullName:   *name,
		Email:      *email,
		Department: "Himakeu",
		YearJoined: time.Now().Year(),
		Username:   *username,
		Password:   *password,
		Role:       models.RoleAdmin,
	})
	if err == directory.ErrDuplicate {
		fmt.Printf("admin %s already exists\n", *username)
		os.Exit(0)
	}
	if err != nil {
		log.Fatalf("failed to create admin: %v", err)
	}
	fmt.Printf("created admin %s (member id=%d)\n", *username, member.ID)
}
