package goalplan

const systemPrompt = "You return structured JSON only."

const userPromptTemplate = `
Today is {today}. You are a fitness planning assistant. Based on the user's target weight, weekly activity frequency, and free-text fitness goal, generate a JSON with:

- "weekly": a 1-paragraph weekly goal-aligned plan
- "monthly": a broader 1-paragraph monthly goal
- "priority": low / medium / high based on perceived urgency
- "priority_reason": 1-sentence justification for priority level
- "target_date": realistic YYYY-MM-DD goal completion date based on healthy progress pace for general goal or weight gain or weight loss
    - Use healthy pacing: 
        - For weight gain: ~0.2 to 0.3 kg per week max
        - For weight loss: ~0.3 to 0.7 kg per week max
        - For fitness or performance goals: suggest ~3–6 months minimum
        - If user’s goal or weight gap is extreme, give a longer timeline.
        - Always assume a sustainable and medically reasonable pace.
    - Never suggest dates that are sooner than medically feasible
    - Always base the timeline from today's date
    - If unsure, slightly round the timeline upwards to promote sustainable consistency.

Respond only in valid JSON. Avoid non-JSON explanation.

User data:
Goal: {goal}
Target weight: {weight}
Weekly activity sessions: {activity}
`
