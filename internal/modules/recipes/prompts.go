package recipes

const generateSystemPrompt = "You are a helpful recipe assistant. Respond only with valid JSON."

var (
	mealTypes = []string{"breakfast", "lunch", "dinner", "snack", "dessert"}
	proteins  = []string{"chicken", "beef", "pork", "fish", "tofu", "lentils", "eggs", "cheese", "beans", "turkey", "shrimp"}
	carbs     = []string{"rice", "pasta", "bread", "potatoes", "quinoa", "oats", "tortilla", "couscous", "barley", "sweet potato"}
	cuisines  = []string{"Italian", "Mexican", "Asian", "American", "Indian", "French", "Greek", "Spanish"}
)

const generatePrompt = `
Generate a creative, realistic, and unique recipe for a single meal that fits the following user profile:
- Daily calorie target: %d
- Allergies: %s
- Dislikes: %s

Randomly select a meal type, main protein, main carb, and cuisine from the following lists. You may also generate a creative dessert or snack instead of a main meal.

Meal types: %s
Main proteins: %s
Main carbs: %s
Cuisines: %s

The recipe should:
- Not include any ingredients the user is allergic to or dislikes
- Be plausible and not too exotic
- Include a title, a list of ingredients (with quantities and units), and step-by-step instructions
- Be suitable for a typical home cook
- Output as JSON with keys: title, ingredients (list of {"ingredient", "measure"}), instructions (list of steps), meal_type, cuisine
- Make each recipe unique and do not repeat previous recipes. Add some random variation each time.
`

const substituteSystemPrompt = "You are a helpful kitchen assistant."

const substitutePrompt = `
Suggest a realistic, common substitute for the ingredient: '%s'.
The substitute should avoid the user's allergies (%s) and dislikes (%s).
If possible, suggest something that is likely to be available in a typical home or grocery store.
Respond with only the substitute ingredient name, nothing else.
`
