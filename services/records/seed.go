package records

import "carbon-track/models"

// DemoRecords est le jeu de démonstration écrit à la première ouverture d'un slot vide.
func DemoRecords() []models.EmissionRecord {
	return []models.EmissionRecord{
		{ID: "1", Date: "2024-06-15", Category: models.CategoryElectricity, Description: "Office electricity", Usage: 1200, Emissions: 480},
		{ID: "2", Date: "2024-06-20", Category: models.CategoryFuel, Description: "Delivery van", Usage: 150, Emissions: 346.5},
		{ID: "3", Date: "2024-06-25", Category: models.CategoryWaste, Description: "General office waste", Usage: 50, Emissions: 28.5},
		{ID: "4", Date: "2024-07-15", Category: models.CategoryElectricity, Description: "Office electricity", Usage: 1350, Emissions: 540},
		{ID: "5", Date: "2024-07-20", Category: models.CategoryFuel, Description: "Delivery van", Usage: 160, Emissions: 369.6},
		{ID: "6", Date: "2024-07-25", Category: models.CategoryWaste, Description: "General office waste", Usage: 55, Emissions: 31.35},
	}
}
