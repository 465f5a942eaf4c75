package constant

const (
	QASystemPrompt = `You are a question-answering assistant. Answer questions about the stored texts only, in the language the question is asked in.`

	QAInstructionPrompt = "Answer the question as truthfully as possible using the provided context, " +
		"and if there is code, wrap it in markdown. If the answer is not contained within the text below " +
		"or the text is empty, say \"Sorry, I don't know.\"\n\nContext:\n"

	// The bracket format here must stay in sync with packer.DecodeCitations.
	QASelectionPrompt = "Each context has a TextGuid and TextName and TextContent followed by the actual message. " +
		"Before providing an answer as accurately as possible, you must select multiple sources that can be used to answer the question " +
		"and keep the TextGuid and TextName of the selected sources, then output the result in the following format, " +
		"e.g. [{textGuid: \"xxx\", textName: \"zzz\"}], only output the format that I have specified. " +
		"If no sources are selected, please output an empty array.\n\nSources:\n"

	QAEmptyContextPlaceholder = "empty"
)

const (
	QATemperature        = 0.2
	SelectionTemperature = 0.0
	ChatTemperature      = 0.7
	ChatTopP             = 1.0
)

const OpenAIDefaultBaseURL = "https://api.openai.com/v1"
