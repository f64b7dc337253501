package mall

var dubaiShops = []Shop{
	{
		Name:        "Hermès",
		Floor:       "Ground Floor",
		Category:    "Luxury Fashion",
		Description: "French luxury house offering handbags, silk scarves and accessories.",
		Location:    "Ground Floor, Zone A, near Main Entrance",
	},
	{
		Name:        "Louis Vuitton",
		Floor:       "Ground Floor",
		Category:    "Luxury Fashion",
		Description: "World-renowned luxury brand for leather goods, luggage and fashion accessories.",
		Location:    "Ground Floor, Zone B, opposite Fountain",
	},
	{
		Name:        "Chanel",
		Floor:       "1st Floor",
		Category:    "Luxury Fashion",
		Description: "Classic French luxury brand with ready-to-wear, fragrance and beauty.",
		Location:    "1st Floor, Zone C, near Escalator 3",
	},
	{
		Name:        "% Arabica",
		Floor:       "2nd Floor",
		Category:    "Cafe & Dining",
		Description: "Specialty coffee bar serving pour-over coffee and light bites.",
		Location:    "2nd Floor, Food Court Area, near Window Seating",
	},
	{
		Name:        "Shake Shack",
		Floor:       "2nd Floor",
		Category:    "Cafe & Dining",
		Description: "American burger joint known for its burgers and shakes.",
		Location:    "2nd Floor, Food Court, Zone D",
	},
	{
		Name:        "Zara",
		Floor:       "1st Floor",
		Category:    "Fashion Retail",
		Description: "Spanish fast-fashion brand for women, men and kids.",
		Location:    "1st Floor, Zone E, near Cinema Entrance",
	},
	{
		Name:        "Apple Store",
		Floor:       "Ground Floor",
		Category:    "Electronics",
		Description: "Official Apple retail store selling iPhone, Mac, iPad and accessories.",
		Location:    "Ground Floor, Zone F, Central Plaza",
	},
	{
		Name:        "Customer Service Center",
		Floor:       "Ground Floor",
		Category:    "Service Facility",
		Description: "Information desk, lost and found, and wheelchair rental.",
		Location:    "Ground Floor, Main Entrance Lobby",
	},
	{
		Name:        "Prayer Room",
		Floor:       "3rd Floor",
		Category:    "Service Facility",
		Description: "A quiet space for prayer.",
		Location:    "3rd Floor, near Restrooms, Zone G",
	},
	{
		Name:        "VIP Lounge",
		Floor:       "3rd Floor",
		Category:    "Service Facility",
		Description: "Lounge with refreshments for premium members.",
		Location:    "3rd Floor, Zone H, requires membership card",
	},
}

var dubaiParking = map[string]string{
	"DXB-1234": "B2-A05",
	"DXB-5678": "B1-C12",
	"AD-9999":  "B2-D08",
	"SHJ-4321": "B1-B03",
	"AUH-7890": "B2-E15",
}

// DubaiMall returns the demo directory.
func DubaiMall() *Directory {
	return NewDirectory(dubaiShops, dubaiParking)
}
