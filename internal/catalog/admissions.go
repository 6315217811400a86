package catalog

import (
	"time"

	"github.com/iliyamo/mufant-museum/internal/model"
)

const logoImage = "assets/images/logo.png"

// Admissions is the ticket-office catalog: the museum entry tiers, two
// time-boxed exhibitions and the guided library tour.
func Admissions(now time.Time) Catalog {
	now = reference(now)
	entry := func(name, description string, price float64) model.Activity {
		return model.Activity{
			Name:        name,
			Type:        "Museum", // normalized on insert
			Description: description,
			Location:    model.DefaultVenue,
			Price:       price,
			ImagePath:   logoImage,
		}
	}
	return Catalog{
		Name: "admissions",
		Activities: []model.Activity{
			entry("MUFANT - Full price", "Full price museum entry for visitors over 10 years", 8.00),
			entry("MUFANT - Reduced price", "Reduced price for University students, Senior over 65 years, AIACE Torino Partners", 7.00),
			entry("MUFANT - Disabled", "Reduced price for disabled people (free companion), possessors Torino+Piemonte Card", 6.00),
			entry("MUFANT - Kids", "Kids entry from 4 to 10 years", 5.00),
			entry("MUFANT - Free", "Free entry for under 4 years, possessors 'Abbonamento Musei Piemonte e Valle d'Aosta'", 0.00),
			{
				Name:        "Star Wars Exhibition",
				Type:        model.TypeEvent,
				Description: "Explore the Star Wars universe with rare collectibles and props",
				StartDate:   at(now),
				EndDate:     days(now, 90),
				Location:    model.DefaultVenue,
				Notes:       "Special exhibition featuring Han Solo carbonite prop",
				Price:       12.00,
				ImagePath:   "assets/images/starwars.jpg",
			},
			{
				Name:        "Superhero Collection",
				Type:        model.TypeEvent,
				Description: "Discover the world of superheroes through comics and memorabilia",
				StartDate:   at(now),
				EndDate:     days(now, 60),
				Location:    model.DefaultVenue,
				Notes:       "Interactive superhero experience",
				Price:       10.00,
				ImagePath:   "assets/images/superhero.jpg",
			},
			{
				Name:        "Library Tour",
				Type:        model.TypeTour,
				Description: "Guided tour of the museum's extensive library collection",
				StartDate:   at(now),
				EndDate:     days(now, 30),
				Location:    model.DefaultVenue,
				Notes:       "1-hour guided tour",
				Price:       5.00,
				ImagePath:   "assets/images/library.jpg",
			},
		},
		Coupons: welcomeCoupons(now),
	}
}
