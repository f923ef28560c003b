package taxonomy

// Default returns the built-in tables.
func Default() *Taxonomy {
	return &Taxonomy{
		Brands: []Brand{
			{Name: "apple", Aliases: []string{"iphone", "macbook", "ipad", "apple watch", "imac"}},
			{Name: "samsung", Aliases: []string{"galaxy", "note", "samsung tv", "samsung monitor"}},
			{Name: "sony", Aliases: []string{"playstation", "sony camera", "bravia", "xperia"}},
			{Name: "canon", Aliases: []string{"eos", "powershot", "canon printer"}},
			{Name: "nikon", Aliases: []string{"coolpix", "nikon dslr", "nikkor lens"}},
			{Name: "dell", Aliases: []string{"xps", "alienware", "dell monitor", "latitude"}},
			{Name: "hp", Aliases: []string{"envy", "spectre", "pavilion", "hp printer"}},
			{Name: "lenovo", Aliases: []string{"thinkpad", "yoga", "lenovo legion", "ideapad"}},
			{Name: "lg", Aliases: []string{"lg tv", "lg refrigerator", "lg washer", "lg dryer"}},
			{Name: "bose", Aliases: []string{"bose headphones", "bose speakers", "bose soundbar"}},
			{Name: "adidas", Aliases: []string{"adidas shoes", "adidas clothing", "adidas accessories"}},
			{Name: "nike", Aliases: []string{"nike shoes", "nike clothing", "nike accessories"}},
			{Name: "gucci", Aliases: []string{"gucci bags", "gucci clothing", "gucci accessories"}},
			{Name: "chanel", Aliases: []string{"chanel perfume", "chanel handbags", "chanel clothing"}},
			{Name: "toyota", Aliases: []string{"toyota camry", "toyota corolla", "toyota rav4"}},
			{Name: "honda", Aliases: []string{"honda civic", "honda accord", "honda cr-v"}},
			{Name: "audi", Aliases: []string{"audi a4", "audi q5", "audi r8"}},
			{Name: "mercedes", Aliases: []string{"mercedes c-class", "mercedes e-class", "mercedes s-class"}},
			{Name: "volkswagen", Aliases: []string{"volkswagen golf", "volkswagen passat", "volkswagen atlas"}},
			{Name: "fitbit", Aliases: []string{"fitbit versa", "fitbit charge", "fitbit inspire"}},
			{Name: "under armour", Aliases: []string{"under armour shoes", "under armour clothing", "under armour accessories"}},
			{Name: "patagonia", Aliases: []string{"patagonia jacket", "patagonia fleece", "patagonia backpack"}},
			{Name: "columbia", Aliases: []string{"columbia jacket", "columbia pants", "columbia hiking boots"}},
			{Name: "north face", Aliases: []string{"north face jacket", "north face backpack", "north face gloves"}},
			{Name: "asus", Aliases: []string{"asus laptop", "asus router", "asus monitor"}},
			{Name: "msi", Aliases: []string{"msi gaming laptop", "msi graphics card", "msi motherboard"}},
			{Name: "logitech", Aliases: []string{"logitech mouse", "logitech keyboard", "logitech webcam"}},
			{Name: "corsair", Aliases: []string{"corsair ram", "corsair power supply", "corsair gaming headset"}},
		},
		// "tenni", "accessorie" and "watche" are kept from the historical tables;
		// "tennis", "accessory" and "watch" are the dictionary lemmas that match.
		Categories: []Category{
			{Name: "Électronique", Items: []string{"smartphone", "phone", "mobile", "laptop", "computer", "camera", "headphones", "speaker", "tablet"}},
			{Name: "Loisirs", Items: []string{"game", "console", "puzzle", "card game", "board game", "sport equipment"}},
			{Name: "Bien-être", Items: []string{"fitness tracker", "yoga mat", "treadmill", "dumbbell", "gym membership"}},
			{Name: "Cuisine", Items: []string{"blender", "microwave", "cookbook", "knife set", "grill"}},
			{Name: "Voyage", Items: []string{"luggage", "backpack", "travel guide", "plane ticket", "travel pillow"}},
			{Name: "Maison", Items: []string{"furniture", "bedding", "tool kit", "lighting", "home decor"}},
			{Name: "Financier", Items: []string{"bank account", "credit card", "investment fund", "stock market", "cryptocurrency"}},
			{Name: "Éducation", Items: []string{"textbook", "online course", "study guide", "educational app", "stationery"}},
			{Name: "Animaux de compagnie", Items: []string{"pet food", "leash", "aquarium", "pet toy", "grooming service"}},
			{Name: "Sport", Items: []string{"football", "basketball", "tenni", "tennis", "soccer", "baseball", "volleyball", "swimming", "golf", "cycling", "running"}},
			{Name: "Mode", Items: []string{"clothing", "shoe", "accessorie", "accessory", "handbag", "jewelry", "watche", "watch", "bag"}},
		},
	}
}
