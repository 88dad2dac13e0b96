package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"emotion-ai-be/internal/constant"
	"emotion-ai-be/internal/model"
	"emotion-ai-be/internal/repository/implementation"
	"emotion-ai-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type seedProduct struct {
	Name          string
	Category      string
	Subcategory   string
	Description   string
	Price         float64
	EmotionScores map[string]float64
}

// catalog covers every category the recommendation prompt offers, each scored
// against the emotions it tends to match.
var catalog = []seedProduct{
	{"Wireless Party Speaker", "Electronics", "Audio", "Portable speaker with room-filling sound", 89.99,
		map[string]float64{"happy": 0.9, "surprise": 0.7, "neutral": 0.5}},
	{"Noise Cancelling Headphones", "Electronics", "Audio", "Quiet the world out", 199.00,
		map[string]float64{"angry": 0.8, "sad": 0.7, "neutral": 0.6}},
	{"Everyday Cotton Tee", "Clothing", "Tops", "Soft organic cotton, relaxed fit", 19.99,
		map[string]float64{"neutral": 0.8, "happy": 0.5}},
	{"Rainy Day Hoodie", "Clothing", "Outerwear", "Heavyweight fleece for low-energy days", 49.50,
		map[string]float64{"sad": 0.85, "fear": 0.6, "neutral": 0.5}},
	{"Weighted Comfort Blanket", "Home & Kitchen", "Bedding", "Calming 7kg weighted blanket", 59.00,
		map[string]float64{"sad": 0.9, "fear": 0.8, "angry": 0.6}},
	{"Cast Iron Skillet", "Home & Kitchen", "Cookware", "Pre-seasoned 12 inch skillet", 34.99,
		map[string]float64{"neutral": 0.7, "happy": 0.6}},
	{"Calming Lavender Face Mask", "Beauty & Personal Care", "Skincare", "Unwind with a lavender infusion", 12.99,
		map[string]float64{"sad": 0.7, "angry": 0.75, "disgust": 0.6}},
	{"Trail Running Shoes", "Sports & Outdoors", "Footwear", "Grippy, light, ready for mud", 120.00,
		map[string]float64{"happy": 0.8, "angry": 0.7, "surprise": 0.6}},
	{"Feel-Good Fiction Bundle", "Books", "Fiction", "Three uplifting bestsellers", 24.99,
		map[string]float64{"sad": 0.85, "fear": 0.7, "neutral": 0.6}},
	{"Board Game Night Set", "Toys & Games", "Games", "Four party games for groups", 34.50,
		map[string]float64{"happy": 0.9, "surprise": 0.8}},
	{"Guided Meditation Subscription", "Health & Wellness", "Mindfulness", "12 months of daily sessions", 69.99,
		map[string]float64{"fear": 0.85, "angry": 0.8, "sad": 0.75}},
	{"Minimalist Silver Pendant", "Jewelry", "Necklaces", "Sterling silver, everyday wear", 45.00,
		map[string]float64{"surprise": 0.8, "happy": 0.7}},
	{"Hand-Thrown Ceramic Mug", "Handmade", "Kitchen", "One-of-a-kind stoneware mug", 28.00,
		map[string]float64{"neutral": 0.7, "sad": 0.6, "happy": 0.55}},
	{"Car Detailing Kit", "Automotive", "Care", "Everything for a showroom shine", 54.95,
		map[string]float64{"neutral": 0.65, "disgust": 0.6}},
	{"Interactive Cat Feather Set", "Pet Supplies", "Toys", "Keeps indoor cats moving", 14.99,
		map[string]float64{"happy": 0.85, "surprise": 0.7}},
	{"Artisan Chocolate Sampler", "Food & Grocery", "Sweets", "Twelve single-origin pralines", 22.50,
		map[string]float64{"sad": 0.8, "happy": 0.75, "surprise": 0.65}},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	color.Cyan("🌱 Seeding product catalog (%d items)\n", len(catalog))

	repo := implementation.NewProductRepository(db)
	ctx := context.Background()

	seeded := 0
	for _, item := range catalog {
		scores, err := json.Marshal(item.EmotionScores)
		if err != nil {
			color.Red("Skipping %s: %v", item.Name, err)
			continue
		}

		product := &model.Product{
			Name:          item.Name,
			Category:      item.Category,
			Subcategory:   item.Subcategory,
			Description:   item.Description,
			Price:         item.Price,
			EmotionScores: datatypes.JSON(scores),
			Affinity:      pgvector.NewVector(constant.DistributionToVector(item.EmotionScores)),
		}
		if err := repo.Upsert(ctx, product); err != nil {
			color.Red("Failed to upsert %s: %v", item.Name, err)
			continue
		}
		color.Green("Upserted: %s (%s)", item.Name, item.Category)
		seeded++
	}

	total, err := repo.Count(ctx)
	if err != nil {
		color.Yellow("Seeded %d products (count query failed: %v)", seeded, err)
		return
	}
	color.Cyan("\n✅ Done. %d products seeded, %d total in catalog", seeded, total)
}
