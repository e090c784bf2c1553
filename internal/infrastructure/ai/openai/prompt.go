package openai

import "fmt"

const maxPromptSnippet = 4000

const classifySystemPrompt = `You classify Moldovan fiscal and accounting documents.
Known document types: factura_fiscala, bon_fiscal, stat_plata, declaratie_tva, contract, aviz_expeditie, ordine_plata, chitanta.
Return a strict JSON object with exactly these keys:
type (one of the known ids, or "unknown"), confidence (number from 0 to 1), data (object mapping field names to string values).
Common field names: number, date, seller, buyer, idno, vat_amount, total_amount, amount, period, company, payer, payee, purpose, iban.
No markdown, no extra keys.`

const enhanceSystemPrompt = `You clean up OCR output of fiscal documents.
Fix broken characters and spacing, keep every number, date, name and code exactly as written.
Return only the corrected text, nothing else.`

func buildClassifyPrompt(text, language string) string {
	return fmt.Sprintf("Document language hint: %s\n\nDocument text:\n%s", languageName(language), snippet(text))
}

func buildVisionPrompt(language string) string {
	return fmt.Sprintf(
		"Extract all text from this fiscal document image, preserving line breaks. The document is in %s. Return only the extracted text.",
		languageName(language))
}

func buildEnhancePrompt(text, language string) string {
	return fmt.Sprintf("Text language: %s\n\nOCR output:\n%s", languageName(language), snippet(text))
}

func languageName(code string) string {
	switch code {
	case "ro":
		return "Romanian"
	case "ru":
		return "Russian"
	default:
		return "Romanian or Russian"
	}
}

func snippet(text string) string {
	if len(text) > maxPromptSnippet {
		return text[:maxPromptSnippet]
	}
	return text
}
