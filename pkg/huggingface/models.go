package huggingface

type inferenceRequest struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
}

type parameters struct {
	MaxNewTokens int `json:"max_new_tokens"`
}

type inferenceResponse []generation

type generation struct {
	GeneratedText string `json:"generated_text"`
}
