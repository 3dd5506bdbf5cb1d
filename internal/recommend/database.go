package recommend

// entry is one row of the advice database.
type entry struct {
	description string
	causalAgent string
	immediate   []string
	prevention  []string
	organic     []string
	chemical    []string
	monitoring  string
}

var fallbackEntry = entry{
	description: "Specific information for this condition is not available in our database.",
	immediate: []string{
		"Monitor plant closely for symptom progression",
		"Take clear photos from multiple angles for expert consultation",
		"Isolate plant if possible to prevent potential spread",
		"Consider soil testing to check nutrient imbalances",
	},
	prevention: []string{
		"Maintain consistent watering schedule (1-2 inches per week)",
		"Ensure proper plant spacing for air circulation",
		"Remove plant debris and weeds regularly",
		"Use drip irrigation to keep foliage dry",
	},
}

var database = map[string]map[string]entry{
	"leaf": {
		"Septoria Leaf Spot": {
			description: "Fungal disease causing small, circular spots with gray centers and dark borders. Spots may merge causing large necrotic areas.",
			causalAgent: "Septoria lycopersici (fungus)",
			immediate: []string{
				"Remove infected leaves immediately and destroy them (do not compost)",
				"Apply fungicide containing chlorothalonil or mancozeb",
				"Stop overhead watering to reduce leaf wetness",
				"Improve air circulation around plants",
			},
			prevention: []string{
				"Practice 3-4 year crop rotation with non-solanaceous crops",
				"Space plants 18-24 inches apart for better air flow",
				"Water at soil level using drip irrigation",
				"Remove plant debris at end of season",
			},
			organic: []string{
				"Apply copper-based fungicide every 7-10 days",
				"Neem oil application every 7-14 days",
				"Biofungicides containing Bacillus subtilis",
			},
			chemical: []string{
				"Chlorothalonil (Bravo, Daconil) - apply every 7-10 days",
				"Azoxystrobin (Heritage) - systemic fungicide",
				"Mancozeb (Dithane) - protectant fungicide",
			},
			monitoring: "Check lower leaves first, disease progresses upward",
		},
		"Bacterial Spot": {
			description: "Bacterial infection causing small, water-soaked spots that become angular with yellow halos. Leaves may yellow and drop.",
			causalAgent: "Xanthomonas species (bacteria)",
			immediate: []string{
				"Remove severely infected plants to prevent spread",
				"Apply copper-based bactericide mixed with mancozeb",
				"Avoid working with plants when foliage is wet",
				"Disinfect tools with 10% bleach solution",
			},
			prevention: []string{
				"Use certified disease-free seeds",
				"Avoid overhead irrigation",
				"Provide good drainage",
				"Rotate with non-host crops for 2-3 years",
			},
			organic: []string{
				"Copper hydroxide sprays every 5-7 days during wet weather",
				"Plant resistance inducers like harpin protein",
			},
			chemical: []string{
				"Copper hydroxide (Kocide) + mancozeb for best control",
				"Acibenzolar-S-methyl (Actigard) for systemic resistance",
			},
			monitoring: "Warm (75-86F), wet conditions favor disease",
		},
		"Early Blight": {
			description: "Fungal disease causing target-like rings on leaves with concentric circles. Lower leaves affected first.",
			causalAgent: "Alternaria solani (fungus)",
			immediate: []string{
				"Remove infected lower leaves",
				"Apply fungicide at first symptoms",
				"Mulch to prevent soil splash",
				"Improve plant nutrition (avoid high nitrogen)",
			},
			prevention: []string{
				"Use resistant varieties (Mountain series, Defiant)",
				"Maintain proper plant spacing",
				"Stake plants for better air circulation",
				"Remove volunteer tomatoes and nightshade weeds",
			},
			organic: []string{
				"Copper fungicide sprays",
				"Compost tea applications",
			},
			chemical: []string{
				"Chlorothalonil-based protectant fungicides",
				"Azoxystrobin for systemic control",
			},
			monitoring: "Lower, older leaves show target-board lesions first",
		},
		"Late Blight": {
			description: "Devastating fungal disease causing large, irregular water-soaked lesions that rapidly expand. White fungal growth may appear on underside.",
			causalAgent: "Phytophthora infestans (water mold)",
			immediate: []string{
				"DESTROY infected plants immediately - do not compost",
				"Apply fungicide within 24 hours of detection",
				"Isolate area to prevent spore spread",
				"Notify nearby growers if in commercial setting",
			},
			prevention: []string{
				"Plant resistant varieties (Mountain Magic, Defiant)",
				"Avoid planting near potatoes",
				"Use drip irrigation only",
				"Apply preventative fungicides during cool, wet periods",
			},
			organic: []string{
				"Copper fungicides every 5-7 days during high risk",
				"Potassium phosphite sprays",
			},
			chemical: []string{
				"Chlorothalonil (Bravo Weather Stik) - protectant",
				"Mandipropamid (Revus) - systemic",
			},
			monitoring: "HIGH ALERT during cool (60-75F), wet weather. Can destroy crop in days.",
		},
		"Yellow Leaf Curl": {
			description: "Viral disease causing upward curling of leaves, yellowing, and stunted growth. Transmitted by whiteflies.",
			causalAgent: "Tomato yellow leaf curl virus (TYLCV)",
			immediate: []string{
				"Remove and destroy infected plants",
				"Control whitefly populations immediately",
				"Use reflective mulches to repel whiteflies",
			},
			prevention: []string{
				"Use resistant varieties (Tyking, Shanty, Tygress)",
				"Install insect-proof netting (50 mesh)",
				"Monitor whitefly populations with yellow sticky traps",
			},
			organic: []string{
				"Neem oil or insecticidal soap for whiteflies",
				"Companion planting with marigolds or basil",
			},
			chemical: []string{
				"Imidacloprid (Admire) - systemic for whiteflies",
				"Pyriproxyfen (Knack) - insect growth regulator",
			},
			monitoring: "Watch for whiteflies and leaf curling symptoms",
		},
		"Healthy": healthyEntry("Plant appears healthy with no disease symptoms observed."),
	},
	"fruit": {
		"Anthracnose": {
			description: "Fungal disease causing sunken, circular, water-soaked spots on ripe fruits. Centers may develop black fungal structures.",
			causalAgent: "Colletotrichum species (fungus)",
			immediate: []string{
				"Harvest fruits at first sign of ripening",
				"Remove and destroy infected fruits",
				"Apply fungicide to protect remaining fruits",
				"Avoid harvesting when plants are wet",
			},
			prevention: []string{
				"Stake plants to keep fruits off ground",
				"Mulch with straw or plastic",
				"Practice 3-year crop rotation",
			},
			monitoring: "Ripe and overripe fruits are most susceptible",
		},
		"Botrytis Gray Mold": {
			description: "Fungal disease causing gray, fuzzy mold on fruits, typically starting at blossom end or injuries.",
			causalAgent: "Botrytis cinerea (fungus)",
			immediate: []string{
				"Remove infected fruits immediately",
				"Improve air circulation",
				"Reduce humidity around plants",
				"Remove spent blossoms and senescent tissues",
			},
			prevention: []string{
				"Avoid wounding fruits during handling",
				"Space plants adequately",
				"Water early in day",
			},
			monitoring: "Cool, humid conditions favor sporulation",
		},
		"Blossom End Rot": {
			description: "Physiological disorder (not disease) causing dark, sunken leathery patches at blossom end of fruit. Caused by calcium deficiency and/or irregular watering.",
			causalAgent: "Calcium deficiency (physiological)",
			immediate: []string{
				"Maintain consistent soil moisture",
				"Apply calcium nitrate foliar spray (2 tbsp/gallon)",
				"Mulch to retain soil moisture",
				"Avoid excessive nitrogen fertilization",
			},
			prevention: []string{
				"Test soil and adjust pH to 6.5-6.8 for calcium availability",
				"Incorporate gypsum or lime before planting if calcium deficient",
				"Use consistent watering schedule (1-2 inches/week)",
			},
			monitoring: "First fruits of the season are most affected",
		},
		"Buckeye Rot": {
			description: "Soil-borne disease causing brown, concentric rings on fruits touching soil. Caused by water mold, not true fungus.",
			causalAgent: "Phytophthora parasitica (water mold)",
			immediate: []string{
				"Remove infected fruits",
				"Stake plants to keep fruits off ground",
				"Apply mulch barrier",
				"Improve drainage in planting area",
			},
			prevention: []string{
				"Use plastic mulch to prevent soil contact",
				"Practice 4-year crop rotation",
				"Plant in raised beds for better drainage",
			},
			monitoring: "Fruits in contact with wet soil are at risk after heavy rain",
		},
		"Sunscald": {
			description: "Sunscald is a physiological disorder caused by excessive exposure to direct sunlight, resulting in discolored, sunken areas on fruits.",
			causalAgent: "Excessive direct sunlight (physiological)",
			immediate: []string{
				"Provide shade cloth during peak sun hours",
				"Avoid heavy pruning that exposes fruits",
				"Harvest exposed fruits early and ripen indoors",
			},
			prevention: []string{
				"Maintain healthy foliage cover over fruit clusters",
				"Control leaf diseases that cause defoliation",
				"Choose varieties with good leaf coverage",
			},
			monitoring: "Watch exposed fruits during heat waves",
		},
		"Healthy": healthyEntry("Fruits appear healthy, properly developed, and free from disease symptoms."),
	},
	"stem": {
		"Wilt": {
			description: "Fungal diseases (Fusarium or Verticillium) causing yellowing, wilting, and vascular discoloration. Plants may die gradually.",
			causalAgent: "Fusarium oxysporum / Verticillium dahliae (fungus)",
			immediate: []string{
				"Remove and destroy infected plants",
				"Solarize soil for 4-6 weeks in hot season",
				"Do not compost infected plants",
				"Disinfect tools after use",
			},
			prevention: []string{
				"Use resistant varieties (VF or VFN indicated on seed packet)",
				"Practice 5-7 year crop rotation with non-host crops",
				"Maintain soil pH above 6.5",
			},
			monitoring: "One-sided wilting and brown vascular tissue are diagnostic",
		},
		"Blight": {
			description: "Stem blight causing dark, sunken cankers on stems, often near soil line. May girdle and kill plant.",
			causalAgent: "Alternaria / Didymella species (fungus)",
			immediate: []string{
				"Remove infected plants or prune affected stems",
				"Apply fungicide to protect remaining plants",
				"Avoid wounding stems during cultivation",
				"Improve drainage",
			},
			prevention: []string{
				"Use disease-free transplants",
				"Avoid overwatering",
				"Remove plant debris after harvest",
			},
			monitoring: "Check stems near the soil line for dark cankers",
		},
		"Healthy": healthyEntry("Stems appear healthy, strong, and free from disease symptoms."),
	},
}

func healthyEntry(description string) entry {
	return entry{
		description: description,
		immediate: []string{
			"Continue regular watering (1-2 inches per week)",
			"Apply balanced fertilizer (5-10-10) monthly",
			"Monitor for pests and diseases weekly",
			"Prune suckers for better air circulation",
		},
		prevention: []string{
			"Rotate planting location annually",
			"Use disease-resistant varieties",
			"Maintain soil pH 6.0-6.8",
			"Mulch to prevent soil splash",
		},
		monitoring: "Weekly inspection of leaves, stems and fruit set",
	}
}
