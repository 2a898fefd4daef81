package main

import (
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/barnabasli/alexandria/internal/model"
	"github.com/barnabasli/alexandria/pkg/database"
)

// Seeds one user, one organization, and an approved membership so the API
// can be exercised locally without an identity backend.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	userId := uuid.New()
	orgId := uuid.New()

	user := &model.User{
		Id:    userId,
		Email: "dev-" + userId.String()[:8] + "@example.com",
		Name:  "Dev User",
		Role:  "member",
	}
	org := &model.Organization{
		Id:        orgId,
		Name:      "Dev Organization",
		CreatedBy: userId,
	}
	membership := &model.Membership{
		Id:             uuid.New(),
		UserId:         userId,
		OrganizationId: orgId,
		Status:         "approved",
		RoleInOrg:      "owner",
	}

	if err := db.Create(user).Error; err != nil {
		log.Fatalf("Error: Failed to seed user: %v", err)
	}
	if err := db.Create(org).Error; err != nil {
		log.Fatalf("Error: Failed to seed organization: %v", err)
	}
	if err := db.Create(membership).Error; err != nil {
		log.Fatalf("Error: Failed to seed membership: %v", err)
	}

	log.Println("✅ Seed complete")
	log.Printf("   user_id:         %s", userId)
	log.Printf("   organization_id: %s", orgId)
	log.Println("   Mint a JWT with sub=<user_id> signed by JWT_SECRET to call the API.")
}
