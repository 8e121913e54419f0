package constant

const (
	ChatProviderClaude = "claude"

	ErrorTypeGeneration     = "generation_error"
	ErrorTypeResponseFormat = "response_format_error"

	IntentHandoff = "intent_to_handoff"

	// WelcomeMessage opens every new chat session.
	WelcomeMessage = "¡Hola! Soy tu asistente de panadería especializado en masa madre. ¿En qué puedo ayudarte hoy?"

	// DegradedResponseMessage replaces the answer when anything inside the
	// pipeline fails. It must stay polite, complete, and offer the human
	// escalation keyword; the user never sees the underlying error.
	DegradedResponseMessage = "Lo siento, estoy teniendo problemas para procesar tu consulta en este momento. 🙏 Por favor, inténtalo de nuevo en unos minutos, o escribe 'soporte' si prefieres hablar con un representante."

	// EmptyProductContext is injected in place of retrieved products when the
	// search returns nothing; the prompt template must never receive an
	// empty context block.
	EmptyProductContext = "No se encontró información de productos específica."

	ConversationContextHeader  = "📜 Historial de conversación reciente:\n"
	ConversationTruncationMark = " [truncado]"
)

// HandoffKeywords trigger the deterministic escalation flag when present in
// a query, matched case-insensitively. The language model handles the
// conversational side independently.
var HandoffKeywords = []string{
	"humano",
	"agente",
	"representante",
	"soporte",
	"hablar con alguien",
	"persona real",
	"atención al cliente",
}
