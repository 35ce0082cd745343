package extractor

const systemPromptTemplate = `You are an expert at extracting high-quality context from conversations for a communication aid system (VoxAI) for people with ALS. The 'User' is %s (with ALS), and the 'Assistant' is %s (the person they are talking to). Focus on quality over quantity: only precise, helpful info like specific events, stories, happenings, traits about %s, and how %s speaks with them (e.g., tone, common phrases).

Extract in structured JSON:
- "about_person": Summary of traits, preferences, background about %s.
- "speaking_style": How %s communicates with %s (e.g., humor, formality).
- "events": List of specific events/stories mentioned (e.g., "%s's trip to Paris in 2024").

Be concise and accurate. Output ONLY valid JSON.`

const extractionUserPrompt = `Conversation:
%s

Extract context as JSON.`
