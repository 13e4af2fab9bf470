package analyze

// maxTranscriptChars caps how much transcript text is sent for structuring.
// Longer transcripts are truncated to this prefix; the stored transcription
// is never truncated. Known precision/cost trade-off.
const maxTranscriptChars = 30000

const structurePrompt = `You are a professional meeting secretary. Read the meeting transcript and organize it into a structured JSON record.
Pay close attention to each participant's responsibilities and to the owner of every follow-up task.

Return data matching this JSON schema exactly:
{
    "meeting_topics": ["topic 1", "topic 2"],
    "participants": [
        {"name": "name", "role": "title or responsibility in the meeting"}
    ],
    "key_points": [
        {"title": "key point title", "content": "detailed explanation"}
    ],
    "next_steps": [
        {"action": "concrete action item", "owner": "person responsible"}
    ],
    "summary": "a meeting summary of roughly 100-200 words"
}

Here is the meeting transcript:
`

const fusedPrompt = `You are a professional meeting secretary. Listen to this meeting recording and complete two tasks:
1. Produce a complete verbatim transcript.
2. Organize the meeting content into a structured record.

Return data matching this JSON schema, with no markdown markers, as plain JSON:
{
    "transcription": "the full meeting transcript...",
    "meeting_topics": ["topic 1", "topic 2"],
    "participants": [
        {"name": "name", "role": "title or responsibility in the meeting"}
    ],
    "key_points": [
        {"title": "key point title", "content": "detailed explanation"}
    ],
    "next_steps": [
        {"action": "concrete action item", "owner": "person responsible"}
    ],
    "summary": "a meeting summary of roughly 100-200 words"
}`
