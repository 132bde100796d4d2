package analysis

const analysisSystem = `You are an expert meeting analyst. You extract discussion structure from transcripts faithfully, quoting speakers verbatim and never inventing positions they did not take.`

const analysisPrompt = `Analyze this transcript and respond with a single JSON object in exactly this shape:

{
  "summary": "2-4 sentence overview of the discussion",
  "topics": [
    {
      "title": "short topic name",
      "stances": [
        {"speaker": "name as it appears", "position": "their stated position", "quote": "short verbatim quote"}
      ],
      "decision": "decision reached on this topic, or empty string if none"
    }
  ],
  "risks": ["open risks or unresolved disagreements"],
  "agreement_confidence": 3
}

agreement_confidence is an integer from 1 (open conflict) to 5 (full agreement) describing how aligned the participants are overall.

Transcript:

%s`
