package catalog

import (
	"time"

	"github.com/iliyamo/mufant-museum/internal/model"
)

// Default is the standard catalog: three running exhibitions, two
// permanent rooms and the welcome coupons. Exhibition windows open at now.
func Default(now time.Time) Catalog {
	now = reference(now)
	return Catalog{
		Name: "default",
		Activities: []model.Activity{
			{
				Name:        "30 ANNI DI SAILOR",
				Type:        model.TypeEvent,
				Description: "Mostra commemorativa per i 30 anni della serie Sailor Moon",
				Location:    "Sala A - Piano Terra",
				Price:       15.0,
				ImagePath:   "assets/images/mocks/sailor_moon.jpg",
				StartDate:   at(now),
				EndDate:     days(now, 60),
				Notes:       "Mostra speciale con oggetti da collezione originali",
			},
			{
				Name:        "STAR WARS COLLECTION",
				Type:        model.TypeEvent,
				Description: "Collezione completa di memorabilia di Star Wars",
				Location:    "Sala B - Primo Piano",
				Price:       20.0,
				ImagePath:   "assets/images/starwars.jpg",
				StartDate:   at(now),
				EndDate:     days(now, 90),
				Notes:       "Include costumi originali e repliche di navi spaziali",
			},
			{
				Name:        "SUPERHERO EXHIBITION",
				Type:        model.TypeEvent,
				Description: "Esposizione dedicata ai supereroi del fumetto",
				Location:    "Sala C - Secondo Piano",
				Price:       12.0,
				ImagePath:   "assets/images/superhero.jpg",
				StartDate:   at(now),
				EndDate:     days(now, 90),
				Notes:       "Fumetti rari e action figures da collezione",
			},
			{
				Name:        "MAIN LIBRARY",
				Type:        model.TypeRoom,
				Description: "Biblioteca principale del museo con collezioni storiche",
				Location:    "Piano Terra - Ala Est",
				Price:       5.0,
				ImagePath:   "assets/images/library.jpg",
				Notes:       "Accesso permanente alla biblioteca storica",
			},
			{
				Name:        "HALL OF HEROES",
				Type:        model.TypeRoom,
				Description: "Sala dedicata agli eroi della cultura pop",
				Location:    "Primo Piano - Ala Ovest",
				Price:       8.0,
				ImagePath:   "assets/images/mocks/heroes_hall.jpg",
				Notes:       "Sala interattiva con postazioni multimediali",
			},
		},
		Coupons: welcomeCoupons(now),
	}
}

func welcomeCoupons(now time.Time) []model.Coupon {
	return []model.Coupon{
		{Code: "WELCOME10", DiscountPercentage: 10, IsActive: true, ExpiresAt: days(now, 30)},
		{Code: "STUDENT15", DiscountPercentage: 15, IsActive: true, ExpiresAt: days(now, 60)},
		{Code: "FAMILY20", DiscountPercentage: 20, IsActive: true, ExpiresAt: days(now, 90)},
	}
}
