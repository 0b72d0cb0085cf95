package suggest

import "github.com/wanderlist/wanderlist/internal/models"

// Place types referenced by the catalog. BaseWeight is a relative
// popularity prior, not a probability.
var (
	typeRestaurant     = models.PlaceType{ID: "restaurant", Name: "Restaurant", BaseWeight: 10}
	typeCafe           = models.PlaceType{ID: "cafe", Name: "Café", BaseWeight: 8}
	typeBakery         = models.PlaceType{ID: "bakery", Name: "Bakery", BaseWeight: 5}
	typeBreakfastSpot  = models.PlaceType{ID: "breakfast_spot", Name: "Breakfast spot", BaseWeight: 4}
	typeBar            = models.PlaceType{ID: "bar", Name: "Bar", BaseWeight: 6}
	typeNightClub      = models.PlaceType{ID: "night_club", Name: "Night club", BaseWeight: 4}
	typeKaraoke        = models.PlaceType{ID: "karaoke", Name: "Karaoke", BaseWeight: 2}
	typeMuseum         = models.PlaceType{ID: "museum", Name: "Museum", BaseWeight: 5}
	typeArtGallery     = models.PlaceType{ID: "art_gallery", Name: "Art gallery", BaseWeight: 3}
	typePark           = models.PlaceType{ID: "park", Name: "Park", BaseWeight: 6}
	typeHikingArea     = models.PlaceType{ID: "hiking_area", Name: "Hiking area", BaseWeight: 3}
	typeBeach          = models.PlaceType{ID: "beach", Name: "Beach", BaseWeight: 3}
	typeShoppingMall   = models.PlaceType{ID: "shopping_mall", Name: "Shopping mall", BaseWeight: 4}
	typeClothingStore  = models.PlaceType{ID: "clothing_store", Name: "Clothing store", BaseWeight: 3}
	typeBookStore      = models.PlaceType{ID: "book_store", Name: "Bookshop", BaseWeight: 2}
	typeMarket         = models.PlaceType{ID: "market", Name: "Market", BaseWeight: 3}
	typeGym            = models.PlaceType{ID: "gym", Name: "Gym", BaseWeight: 2}
	typeYogaStudio     = models.PlaceType{ID: "yoga_studio", Name: "Yoga studio", BaseWeight: 1}
	typeSpa            = models.PlaceType{ID: "spa", Name: "Spa", BaseWeight: 2}
	typeChurch         = models.PlaceType{ID: "church", Name: "Church", BaseWeight: 1}
	typeTemple         = models.PlaceType{ID: "temple", Name: "Temple", BaseWeight: 1}
	typeAttraction     = models.PlaceType{ID: "tourist_attraction", Name: "Attraction", BaseWeight: 5}
	typeAmusementPark  = models.PlaceType{ID: "amusement_park", Name: "Amusement park", BaseWeight: 2}
	typeZoo            = models.PlaceType{ID: "zoo", Name: "Zoo", BaseWeight: 2}
	typeMovieTheater   = models.PlaceType{ID: "movie_theater", Name: "Cinema", BaseWeight: 4}
	typeBowlingAlley   = models.PlaceType{ID: "bowling_alley", Name: "Bowling alley", BaseWeight: 2}
	typeLiveMusicVenue = models.PlaceType{ID: "live_music_venue", Name: "Live music venue", BaseWeight: 3}
)

// catalog is the static list of category groups the engine samples from.
// Weight and per-request metadata flags are filled in by the engine; only
// the static fields live here. Order matters for tie-breaking.
var catalog = []models.CategoryGroup{
	{
		ID: "restaurants", Title: "Places to eat", Query: "restaurants",
		Types: []models.PlaceType{typeRestaurant}, Purpose: models.PurposePrimary,
	},
	{
		ID: "restaurants_fine_dining", Title: "A night out", Query: "fine dining restaurants",
		Types: []models.PlaceType{typeRestaurant}, Purpose: models.PurposeSecondary,
	},
	{
		ID: "restaurants_cheap_eats", Title: "Cheap eats", Query: "cheap restaurants",
		Types: []models.PlaceType{typeRestaurant}, Purpose: models.PurposeSecondary,
	},
	{
		ID: "restaurants_brunch", Title: "Brunch spots", Query: "brunch",
		Types: []models.PlaceType{typeBreakfastSpot, typeCafe}, Purpose: models.PurposeSecondary,
		Metadata: &models.CategoryMetadata{
			TimeAppropriate: map[models.TimeOfDay]bool{
				models.TimeOfDayEvening:   false,
				models.TimeOfDayLateNight: false,
			},
		},
	},
	{
		ID: "coffee", Title: "Coffee & cafés", Query: "coffee shops",
		Types: []models.PlaceType{typeCafe}, Purpose: models.PurposePrimary,
		Metadata: &models.CategoryMetadata{
			TimeAppropriate: map[models.TimeOfDay]bool{
				models.TimeOfDayLateNight: false,
			},
		},
	},
	{
		ID: "bakeries", Title: "Fresh bakeries", Query: "bakery",
		Types: []models.PlaceType{typeBakery}, Purpose: models.PurposeSecondary,
	},
	{
		ID: "bars", Title: "Bars & pubs", Query: "bars",
		Types: []models.PlaceType{typeBar}, Purpose: models.PurposePrimary,
		Metadata: &models.CategoryMetadata{IsNightSuggestion: true},
	},
	{
		ID: "nightlife", Title: "Late-night dancing", Query: "night clubs",
		Types: []models.PlaceType{typeNightClub}, Purpose: models.PurposeSecondary,
		Metadata: &models.CategoryMetadata{IsNightSuggestion: true},
	},
	{
		ID: "karaoke_rooms", Title: "Karaoke rooms", Query: "karaoke",
		Types: []models.PlaceType{typeKaraoke}, Purpose: models.PurposeContextual,
		Metadata: &models.CategoryMetadata{
			IsNightSuggestion:  true,
			RequiresUserIntent: true,
		},
	},
	{
		ID: "live_music", Title: "Live music tonight", Query: "live music venues",
		Types: []models.PlaceType{typeLiveMusicVenue}, Purpose: models.PurposeSecondary,
		Metadata: &models.CategoryMetadata{
			IsNightSuggestion: true,
			TimeAppropriate: map[models.TimeOfDay]bool{
				models.TimeOfDayMorning: false,
				models.TimeOfDayLunch:   false,
			},
		},
	},
	{
		ID: "museums", Title: "Museums & exhibitions", Query: "museums",
		Types: []models.PlaceType{typeMuseum}, Purpose: models.PurposePrimary,
	},
	{
		ID: "galleries", Title: "Art galleries", Query: "art galleries",
		Types: []models.PlaceType{typeArtGallery}, Purpose: models.PurposeSecondary,
	},
	{
		ID: "parks", Title: "Parks & green space", Query: "parks",
		Types: []models.PlaceType{typePark}, Purpose: models.PurposePrimary,
	},
	{
		ID: "hikes", Title: "Trails & viewpoints", Query: "hiking trails",
		Types: []models.PlaceType{typeHikingArea}, Purpose: models.PurposeSecondary,
	},
	{
		ID: "beaches", Title: "Beaches nearby", Query: "beaches",
		Types: []models.PlaceType{typeBeach}, Purpose: models.PurposeContextual,
	},
	{
		ID: "shopping", Title: "Shopping", Query: "shopping",
		Types: []models.PlaceType{typeShoppingMall, typeClothingStore}, Purpose: models.PurposePrimary,
	},
	{
		ID: "bookshops", Title: "Bookshops", Query: "book stores",
		Types: []models.PlaceType{typeBookStore}, Purpose: models.PurposeContextual,
	},
	{
		ID: "markets", Title: "Local markets", Query: "markets",
		Types: []models.PlaceType{typeMarket}, Purpose: models.PurposeSecondary,
		Metadata: &models.CategoryMetadata{
			TimeAppropriate: map[models.TimeOfDay]bool{
				models.TimeOfDayEvening:   false,
				models.TimeOfDayLateNight: false,
			},
		},
	},
	{
		ID: "fitness", Title: "Gyms & studios", Query: "gyms",
		Types: []models.PlaceType{typeGym, typeYogaStudio}, Purpose: models.PurposeContextual,
		Metadata: &models.CategoryMetadata{
			RequiresUserIntent:      true,
			MinimumInteractionCount: 2,
		},
	},
	{
		ID: "wellness", Title: "Spas & wellness", Query: "spas",
		Types: []models.PlaceType{typeSpa}, Purpose: models.PurposeSecondary,
	},
	{
		ID: "sights", Title: "Must-see sights", Query: "tourist attractions",
		Types: []models.PlaceType{typeAttraction}, Purpose: models.PurposePrimary,
	},
	{
		ID: "heritage", Title: "Historic places of worship", Query: "historic churches and temples",
		Types: []models.PlaceType{typeChurch, typeTemple}, Purpose: models.PurposeContextual,
	},
	{
		ID: "family_fun", Title: "Family outings", Query: "family attractions",
		Types: []models.PlaceType{typeAmusementPark, typeZoo}, Purpose: models.PurposeSecondary,
	},
	{
		ID: "movies", Title: "Cinemas", Query: "movie theaters",
		Types: []models.PlaceType{typeMovieTheater}, Purpose: models.PurposeSecondary,
	},
	{
		ID: "bowling", Title: "Bowling & arcades", Query: "bowling alleys",
		Types: []models.PlaceType{typeBowlingAlley}, Purpose: models.PurposeContextual,
	},
}

// Catalog returns the static category group catalog. Callers must treat the
// returned slice as read-only; the engine clones groups before tagging them.
func Catalog() []models.CategoryGroup {
	return catalog
}
