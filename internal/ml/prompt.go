package ml

// labelPrompt is sent alongside every label image. It pins the reply to the
// WineRecord JSON shape.
const labelPrompt = `Analyze this wine label image and extract the wine information.
Respond with ONLY a JSON object, without markdown formatting or any additional text, in exactly this format:
{
	"name": "wine name",
	"producer": "producer or winery name, or null if unknown",
	"year": vintage year as a number, or null if non-vintage or unknown,
	"region": "wine region and country",
	"grape": "grape variety or blend",
	"type": "red" | "white" | "rosé" | "sparkling" | "dessert",
	"characteristics": {
		"boldness": number from 1 to 5,
		"tannins": number from 1 to 5,
		"acidity": number from 1 to 5
	},
	"notes": "short tasting notes and food pairings",
	"estimatedPrice": "estimated retail price range, e.g. $20-30"
}
If a field cannot be read from the label, make your best estimate from the rest of the label.`
