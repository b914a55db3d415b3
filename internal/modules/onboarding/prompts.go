package onboarding

const stageSystemPrompt = "You are a nutrition assistant. Respond in the exact format specified."

const restrictionsPrompt = `
You are a nutrition assistant. Based on the user's input, identify their dietary restrictions, allergies, and foods they dislike.
Return your response in exactly this format:
DIETARY_TAGS: vegetarian, gluten-free, etc
ALLERGIES: peanuts, shellfish, etc
DISLIKES: mushrooms, olives, etc

User input:
"{text}"
`

const cuisinesPrompt = `
You are a culinary assistant. Based on the user's input, identify their preferred cuisines and favorite foods.
Return your response in exactly this format:
CUISINES: Italian, Indian, etc
FAVORITE_FOODS: pasta, curry, etc

User input:
"{text}"
`

const timingPrompt = `
You are a diet planning assistant. Based on the user's input, identify their preferred meal schedule.
Return your response in exactly this format:
MEALS_PER_DAY: 3
MEAL_TIMES: 08:00, 12:30, 18:00

User input:
"{text}"
`

const analysisSystemPrompt = "You are a nutrition expert. Respond only with valid JSON."

const analysisPrompt = `
    As a nutrition expert, analyze this user's needs and provide a structured meal planning baseline.
    Consider their health data and dietary preferences:

    Health Profile:
    - Goal Category: %s
    - Lifestyle: %s
    - Current BMI Category: %s

    Dietary Preferences:
    - Dietary Tags: %s
    - Allergies: %s
    - Preferred Cuisines: %s
    - Meals per day: %d

    Return a JSON response with:
    - daily_calories: recommended daily calorie intake
    - macro_split: protein, carbs, and fats percentages
    - meal_size_distribution: percentage of daily calories for each meal
    - nutrition_notes: key considerations based on their profile
    `

const baselineSystemPrompt = "You are a meal planning expert. Respond only with valid JSON."

const baselinePrompt = `
    Based on the nutritional analysis and user preferences, create a baseline meal structure.
    
    Analysis Results:
    - Daily Calories: %v kcal
    - Macro Split: %s
    - Meal Distribution: %s
    
    User Preferences:
    - Dietary Tags: %s
    - Preferred Cuisines: %s
    - Meals per day: %d
    
    Return a JSON structure with:
    - meal_templates: suggested meal types for each time slot
    - portion_guidelines: general portion sizes for food groups
    - cuisine_rotation: suggested cuisine rotation based on preferences
    `
