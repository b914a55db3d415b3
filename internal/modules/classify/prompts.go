package classify

const systemPrompt = "You classify free-text health input into a fixed label."

const lifestylePrompt = `
You are a health assistant. Based on the user's free-text description, classify their lifestyle into ONE of the following:
- Sedentary
- Lightly active
- Active
- Very active
- Endurance athlete

Respond ONLY with the exact label.

User input:
"{text}"
`

const dietPrompt = `
You are a nutrition assistant. Based on the user's dietary description, classify into ONE of:
- Healty
- Unhealty
- Educated
- Reasonable

Respond ONLY with the exact label.

User input:
"{text}"
`

const goalPrompt = `
You are a fitness coach. Based on the user's goal, classify into ONE of:
- Weight loss
- Muscle gain
- General fitness
- Endurance training
- Injury recovery

Respond ONLY with the exact label.

User input:
"{text}"
`
