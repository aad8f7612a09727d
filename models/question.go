package models

// Question is the authoritative record loaded from a language's question bank.
// Read-only after load; a cache refresh replaces the whole set at once.
// Question text is the de facto unique key across the bank: lookups by text
// take the first match when duplicates exist.
type Question struct {
	Text     string   `json:"text"`
	Answers  []string `json:"answers"`
	Correct  string   `json:"correct"`
	Category string   `json:"category"`
}

// SafeQuestion is the wire form sent to clients before they answer. It never
// carries the correct answer, and the answer order is shuffled at serve time.
type SafeQuestion struct {
	Text     string   `json:"text"`
	Answers  []string `json:"answers"`
	Category string   `json:"category"`
}

// Safe strips the correct answer. The caller is responsible for shuffling.
func (q Question) Safe(answers []string) SafeQuestion {
	return SafeQuestion{
		Text:     q.Text,
		Answers:  answers,
		Category: q.Category,
	}
}

// VerifyRequest is the body of POST /api/questions/verify.
type VerifyRequest struct {
	QuestionText string `json:"questionText"`
	Answer       string `json:"answer"`
	Lang         string `json:"lang"`
}

// VerifyResult is the verify response. The correct answer is deliberately
// absent even on a wrong guess: the client already holds the candidate list,
// and echoing the answer would let it probe for free reveals.
type VerifyResult struct {
	Correct bool `json:"correct"`
}
