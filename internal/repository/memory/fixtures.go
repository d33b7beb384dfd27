package memory

import (
	"time"

	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
)

// DemoOrganization owns every fixture record
const DemoOrganization = "org-1"

var fixtureTime = time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)

// DemoCustomers returns the customers shown in demo mode
func DemoCustomers() []models.Customer {
	mk := func(id, first, last, phone, email, vehicle, lastContact string, offset int) models.Customer {
		at := fixtureTime.Add(time.Duration(offset) * time.Hour)
		return models.Customer{
			ID:              id,
			OrganizationID:  DemoOrganization,
			FirstName:       first,
			LastName:        last,
			PhoneNumber:     phone,
			Email:           email,
			VehicleInterest: vehicle,
			LastContact:     lastContact,
			Tags:            []string{},
			Status:          models.CustomerStatusActive,
			CreatedAt:       at,
			UpdatedAt:       at,
		}
	}

	return []models.Customer{
		mk("6f1c2a0e-0d1b-4c55-9a35-1b1e8f1c0a01", "John", "Smith", "+1234567890", "john.smith@example.com", "Toyota Camry", "2024-01-10", 0),
		mk("6f1c2a0e-0d1b-4c55-9a35-1b1e8f1c0a02", "Sarah", "Johnson", "+1234567891", "sarah.j@example.com", "Honda Civic", "2024-01-12", 1),
		mk("6f1c2a0e-0d1b-4c55-9a35-1b1e8f1c0a03", "Mike", "Brown", "+1234567892", "mike.brown@example.com", "Ford F-150", "2024-01-08", 2),
		mk("6f1c2a0e-0d1b-4c55-9a35-1b1e8f1c0a04", "Emily", "Davis", "+1234567893", "emily.davis@example.com", "Chevrolet Silverado", "", 3),
	}
}

// DemoCampaigns returns the campaigns shown in demo mode
func DemoCampaigns() []models.Campaign {
	scheduled := fixtureTime.Add(30 * 24 * time.Hour)

	return []models.Campaign{
		{
			ID:             "9b7d4e2c-5a3f-4e1d-8c6b-2f0a9e7d1c01",
			OrganizationID: DemoOrganization,
			Name:           "Spring Sales Event",
			Script:         "Hi [First Name], this is [Sales Rep] from [Dealership]. The [Vehicle] you asked about is part of our spring sales event this weekend. Call us back to book a test drive.",
			Status:         models.CampaignStatusPending,
			VoiceID:        "professional_male",
			Dealership:     "Downtown Motors",
			SalesRep:       "Alex",
			CreatedAt:      fixtureTime,
			UpdatedAt:      fixtureTime,
		},
		{
			ID:                  "9b7d4e2c-5a3f-4e1d-8c6b-2f0a9e7d1c02",
			OrganizationID:      DemoOrganization,
			Name:                "Service Reminder",
			Script:              "Hello [Customer Name], your vehicle is due for service at [Dealership]. Reply or call to schedule.",
			Status:              models.CampaignStatusScheduled,
			VoiceID:             "professional_female",
			Dealership:          "Downtown Motors",
			ScheduledAt:         &scheduled,
			DeliveryWindowStart: "09:00",
			DeliveryWindowEnd:   "17:00",
			TimeZone:            "America/New_York",
			CreatedAt:           fixtureTime.Add(time.Hour),
			UpdatedAt:           fixtureTime.Add(time.Hour),
		},
		{
			ID:             "9b7d4e2c-5a3f-4e1d-8c6b-2f0a9e7d1c03",
			OrganizationID: DemoOrganization,
			Name:           "New Arrivals",
			Script:         "Hi [First Name], new [Vehicle Type] inventory just landed at [Dealership]. Stop by this week!",
			Status:         models.CampaignStatusCompleted,
			VoiceID:        "professional_male",
			Dealership:     "Downtown Motors",
			CreatedAt:      fixtureTime.Add(2 * time.Hour),
			UpdatedAt:      fixtureTime.Add(2 * time.Hour),
		},
	}
}
