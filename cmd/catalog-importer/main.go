// cmd/catalog-importer - bulk loads the company and opportunity
// catalog from a JSON export.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"skaila/database"
	"skaila/models"
)

type JSONOpportunity struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Sector        string  `json:"sector"`
	Type          string  `json:"type"`
	LocationType  string  `json:"location_type"`
	RequiredHours int     `json:"required_hours"`
	Compensation  float64 `json:"compensation"`
	PCTOCertified bool    `json:"pcto_certified"`
	Spots         int     `json:"spots"`
}

type JSONCompany struct {
	Name          string            `json:"name"`
	Sector        string            `json:"sector"`
	Location      string            `json:"location"`
	Website       string            `json:"website"`
	Opportunities []JSONOpportunity `json:"opportunities"`
}

func main() {
	jsonPath := "./data/catalog.json"
	if len(os.Args) > 1 {
		jsonPath = os.Args[1]
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		log.Fatal("Failed to read JSON file:", err)
	}

	var companies []JSONCompany
	if err := json.Unmarshal(data, &companies); err != nil {
		log.Fatal("Failed to parse JSON:", err)
	}

	database.InitDB()
	defer database.CloseDB()
	db := database.GetDB()

	fmt.Printf("Found %d companies\n\n", len(companies))

	var opportunities []models.Opportunity

	for _, jc := range companies {
		fmt.Printf("Processing: %s\n", jc.Name)

		company := models.Company{
			Name:     jc.Name,
			Sector:   jc.Sector,
			Location: jc.Location,
			Website:  jc.Website,
		}
		// Re-running the importer must not duplicate companies
		if err := db.Where("name = ?", jc.Name).FirstOrCreate(&company).Error; err != nil {
			log.Printf("Error creating company %s: %v\n", jc.Name, err)
			continue
		}

		for _, jo := range jc.Opportunities {
			spots := jo.Spots
			if spots <= 0 {
				spots = 1
			}
			opportunities = append(opportunities, models.Opportunity{
				CompanyID:      company.ID,
				Title:          jo.Title,
				Description:    jo.Description,
				Sector:         jo.Sector,
				Type:           jo.Type,
				LocationType:   jo.LocationType,
				RequiredHours:  jo.RequiredHours,
				Compensation:   jo.Compensation,
				PCTOCertified:  jo.PCTOCertified,
				SpotsAvailable: spots,
				Active:         true,
			})
		}
	}

	fmt.Printf("\nTotal opportunities to import: %d\n\n", len(opportunities))

	batchSize := 500
	for i := 0; i < len(opportunities); i += batchSize {
		end := i + batchSize
		if end > len(opportunities) {
			end = len(opportunities)
		}

		batch := opportunities[i:end]
		if err := db.Create(&batch).Error; err != nil {
			log.Printf("Error inserting batch %d-%d: %v\n", i, end, err)
		} else {
			fmt.Printf("Inserted opportunities %d-%d\n", i+1, end)
		}
	}

	fmt.Println("\n✓ Import completed successfully!")

	var count int64
	db.Model(&models.Opportunity{}).Count(&count)
	fmt.Printf("✓ Total opportunities in database: %d\n", count)
}
