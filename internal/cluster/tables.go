package cluster

// Per-source categorization tables. These are data, not logic: every table
// feeds the same matching algorithm in category.go. The phrase lists mirror
// the vocabularies the individual city portals actually use.

// BostonTable matches the Boston 311 CSV export (case_title / subject /
// reason columns).
var BostonTable = Table{
	{
		Category: Cleanup,
		Matcher: Matcher{
			Titles: []string{
				"Improper Storage of Trash (Barrels)", "CE Collection", "Graffiti Removal",
				"Requests for Street Cleaning", "Empty Litter Basket", "Pick up Dead Animal",
				"Abandoned Vehicles", "Bulk Item Collection", "Illegal Dumping",
				"Overflowing Litter Baskets", "Dirty Conditions",
			},
			Subjects: []string{
				"Public Works Department", "Street Cleaning", "Graffiti",
				"Highway Maintenance", "Code Enforcement",
			},
			Keywords: []string{
				"trash", "garbage", "litter", "graffiti", "cleaning", "dumping",
				"abandoned", "dead animal", "debris", "collection", "removal",
			},
		},
	},
	{
		Category: Advocacy,
		Matcher: Matcher{
			Titles: []string{
				"Air Pollution Control", "Noise Disturbance", "Water Quality",
				"Industrial Waste", "Environmental Hazard", "Toxic Material",
				"Sewage/Septic", "Odor", "Chemical Spill",
			},
			Subjects: []string{
				"Environmental Services", "Air Quality", "Water Quality",
				"Hazardous Materials", "Industrial Compliance",
			},
			Keywords: []string{
				"pollution", "noise", "air quality", "water", "toxic", "hazard",
				"chemical", "industrial", "sewage", "odor", "contamination",
			},
		},
	},
	{
		Category: Education,
		Matcher: Matcher{
			Titles: []string{
				"Recycling", "Composting Program", "Environmental Education",
				"Green Initiative", "Sustainability Program",
			},
			Subjects: []string{
				"Recycling", "Environmental Education", "Sustainability",
				"Green Programs", "Conservation",
			},
			Keywords: []string{
				"recycling", "composting", "education", "green", "sustainability",
				"conservation", "program", "initiative", "awareness",
			},
		},
	},
}

// SocrataTable matches the Socrata 311 datasets (NYC, Chicago, SF, LA), which
// expose complaint_type / descriptor / agency fields.
var SocrataTable = Table{
	{
		Category: Cleanup,
		Matcher: Matcher{
			Titles: []string{
				"Illegal Dumping", "Street/Sidewalk", "Sanitation Condition", "Graffiti",
				"Abandoned Vehicle", "Bulk Item", "Dead Animal", "Overflowing Litter Baskets",
				"Dirty Conditions", "Sweeping/Cleaning", "Litter Basket / Request",
			},
			Keywords: []string{
				"illegal dumping", "litter", "trash", "garbage", "debris", "waste",
				"graffiti", "abandoned vehicle", "bulk item", "mattress", "furniture",
				"construction debris", "yard waste", "electronic waste", "hazardous waste",
				"street cleaning", "sidewalk cleaning", "park maintenance", "beach cleanup",
			},
		},
	},
	{
		Category: Advocacy,
		Matcher: Matcher{
			Titles: []string{
				"Air Quality", "Noise", "Water Quality", "Industrial Waste", "Hazmat",
				"Environmental", "Toxic Material", "Chemical Spill", "Sewage",
				"Illegal Discharge", "Odor/Gas", "Indoor Air Quality",
			},
			Keywords: []string{
				"air quality", "noise", "pollution", "environmental", "toxic", "contamination",
				"industrial", "emissions", "odor", "chemical", "hazmat", "spill", "leak",
				"water quality", "sewage", "storm drain", "illegal discharge",
			},
		},
	},
	{
		Category: Education,
		Matcher: Matcher{
			Titles: []string{
				"Recycling", "Composting", "Energy", "Green Program", "Sustainability",
				"Environmental Education", "Conservation",
			},
			Keywords: []string{
				"recycling", "composting", "sustainability", "green", "energy",
				"conservation", "education", "outreach", "awareness", "program",
			},
		},
	},
}

// Open311Table matches the generic Open311 v2 API (service_name /
// description fields), which has the loosest vocabulary of the three.
var Open311Table = Table{
	{
		Category: Cleanup,
		Matcher: Matcher{
			Keywords: []string{
				"cleanup", "trash", "waste", "litter", "dumping", "garbage",
				"recycling bin", "graffiti", "vandalism", "sanitation", "debris",
			},
		},
	},
	{
		Category: Advocacy,
		Matcher: Matcher{
			Keywords: []string{
				"advocacy", "policy", "petition", "meeting", "pollution",
				"air quality", "water quality", "hazardous", "toxic", "contamination",
			},
		},
	},
	{
		Category: Education,
		Matcher: Matcher{
			Keywords: []string{
				"education", "awareness", "workshop", "training", "outreach",
			},
		},
	},
}

// Open311Filter is the broader keyword list Open311 sources use to decide
// whether an issue is environmental at all, before categorization.
var Open311Filter = []string{
	"waste", "trash", "garbage", "recycling", "litter", "dumping",
	"pollution", "water", "air quality", "environmental", "cleanup",
	"hazardous", "toxic", "contamination", "spill", "leak",
	"graffiti", "vandalism", "park", "tree", "vegetation",
	"sanitation", "pest", "rodent", "illegal dumping",
}
