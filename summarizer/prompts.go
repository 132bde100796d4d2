package summarizer

import "fmt"

const primarySystem = `You are an expert document analyst. You write faithful, well-organized summaries that preserve the document's key facts, figures, names and conclusions. You never invent content that is not in the source.`

const chunkSystem = `You are an expert document analyst summarizing one segment of a longer document. Other segments are summarized separately, so capture everything important in this segment without referring to content outside it.`

const mergeSystem = `You are an expert document analyst reconciling partial summaries of a single document into one coherent summary. The parts are in document order. Merge overlapping points, resolve the narrative across part boundaries, and drop the part labels from your output.`

func systemPrompt(mode Mode) string {
	switch mode {
	case ModeChunkPartial:
		return chunkSystem
	case ModeMerge:
		return mergeSystem
	default:
		return primarySystem
	}
}

func userPrompt(mode Mode, text string) string {
	switch mode {
	case ModeChunkPartial:
		return fmt.Sprintf("Summarize this document segment. Keep key facts, figures, names and decisions:\n\n%s", text)
	case ModeMerge:
		return fmt.Sprintf("Combine these partial summaries of one document into a single coherent summary:\n\n%s", text)
	default:
		return fmt.Sprintf("Summarize this document. Keep key facts, figures, names and decisions:\n\n%s", text)
	}
}
