package handlers

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/codenest-dev/codenest/internal/knowledge"
	"github.com/codenest-dev/codenest/internal/services"
	"github.com/codenest-dev/codenest/internal/storage"
	"github.com/codenest-dev/codenest/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type ChatRequest struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history"`
}

// linkMarkerPattern matches the @@LINK[display](target)@@ annotations the
// model is instructed to emit. Prior turns are rewritten to the bare target
// so the model never re-reads its own markup as literal history.
var linkMarkerPattern = regexp.MustCompile(`@@LINK\[.*?\]\((.*?)\)@@`)

// ChatHandler serves the retrieval-augmented assistant. Client is a
// capability: nil means the upstream was never configured and every request
// is answered 503 without a network attempt.
type ChatHandler struct {
	Client    *services.GeminiClient
	Knowledge knowledge.Base
	Media     *storage.Store
}

func NewChatHandler(client *services.GeminiClient, kb knowledge.Base, media *storage.Store) *ChatHandler {
	return &ChatHandler{
		Client:    client,
		Knowledge: kb,
		Media:     media,
	}
}

func (h *ChatHandler) Chat(ctx *gin.Context) {
	if h.Client == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "Chatbot feature is currently unavailable due to a configuration issue"})
		return
	}

	var body ChatRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if body.Message == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Message content is required"})
		return
	}

	contents := sanitizeHistory(body.History)

	currentTurn := services.Content{Role: "user"}

	if ragContext := h.buildRetrievalContext(body.Message); ragContext != "" {
		currentTurn.Parts = append(currentTurn.Parts, services.Part{Text: ragContext})
	}

	currentTurn.Parts = append(currentTurn.Parts, services.Part{
		Text: "User's current question: " + body.Message,
	})

	contents = append(contents, currentTurn)

	response, err := h.Client.GenerateContent(systemInstruction, contents)

	if err != nil {
		logger.L.Error("Gemini API call failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred while communicating with the AI assistant"})
		return
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		logger.L.Error("Gemini API returned no valid candidates")

		errorMessage := "The AI assistant could not generate a response at this time."
		if response.PromptFeedback != nil && response.PromptFeedback.BlockReason != "" {
			errorMessage += fmt.Sprintf(" Reason: Content was blocked (%s).", response.PromptFeedback.BlockReason)
		}

		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errorMessage})
		return
	}

	// Link markup is the model's responsibility; the reply is returned verbatim.
	ctx.JSON(http.StatusOK, gin.H{"reply": response.Candidates[0].Content.Parts[0].Text})
}

// buildRetrievalContext runs the keyword retrieval step and, when anything
// matched, assembles the context block that teaches the model the link
// annotation format and lists the resolvable resources.
func (h *ChatHandler) buildRetrievalContext(message string) string {
	matches := h.Knowledge.Match(message)

	if len(matches) == 0 {
		return ""
	}

	var retrieved strings.Builder
	var resources []string

	for _, doc := range matches {
		retrieved.WriteString(fmt.Sprintf("\n- Document: '%s'. %s", doc.Title, doc.Description))
		resources = append(resources, fmt.Sprintf(
			"Document: '%s' (for queries about %s, link URL: %s)",
			doc.Title, doc.Key, h.Media.URL(doc.Filename),
		))
	}

	var context strings.Builder

	context.WriteString("Based on the user's query, here is some potentially relevant information from the CodeNest platform:\n")
	context.WriteString(retrieved.String())
	context.WriteString("\n\nIf you use this information or if it's directly relevant to the user's query, please incorporate it naturally into your response. ")
	context.WriteString("You can also suggest relevant resources. When suggesting a resource, please use the following special format: @@LINK[display text for link](actual_url_or_path)@@. The 'display text for link' should be user-friendly (e.g., the page name or document title). The 'actual_url_or_path' should be the corresponding path or URL.\n")
	context.WriteString("Available resources identified for this query:\n")

	for _, resource := range resources {
		context.WriteString("  - " + resource + "\n")
	}

	context.WriteString("\nFor example: 'For more details on teamwork, please refer to the @@LINK[" + matches[0].Title + "](" + h.Media.URL(matches[0].Filename) + ")@@.'\n")

	return context.String()
}

func sanitizeHistory(history []ChatMessage) []services.Content {
	contents := make([]services.Content, 0, len(history))

	for _, entry := range history {
		if entry.Role == "" || entry.Text == "" {
			continue
		}

		cleaned := linkMarkerPattern.ReplaceAllString(entry.Text, "$1")

		contents = append(contents, services.Content{
			Role:  entry.Role,
			Parts: []services.Part{{Text: cleaned}},
		})
	}

	return contents
}

const systemInstruction = `You are CodeNest AI, a friendly and helpful assistant for a university collaboration and publication platform named CodeNest.
CodeNest allows users (students, lecturers, advisors) to upload, share, and discover academic and technical projects, including code, AutoCAD files, research papers, and books.
Key features include project creation, project exploration, user profiles, commenting, and rating.
Your primary goal is to assist users with questions about using CodeNest, finding information, and general academic/technical queries related to the platform's purpose.
Be concise, polite, and informative.
If asked about specific user data, private project details, or anything beyond your scope, politely state that you cannot access that information.
Here is the information about the academic calendar for the 2024-2025 academic year:
RAUF DENKTAS UNIVERSITY
ACADEMIC CALENDAR

FALL SEMESTER
1 August - 20 September 2024: New student application process
2 - 6 September 2024: Period for entering courses to be offered in Fall 2024-2025
9 September - 11 October 2024: Orientation program for new students
11 September - 20 September 2024: Online course registration period for registered students
11 September - 4 October 2024: English Placement and Proficiency Test
16 - 20 September 2024: Course registration with the approval of the advisor
4 October 2024: Classes commence; first day for late registration; last day to apply for change of program and course exemptions
11 October 2024: Last day for late registration; last day for add and drop courses
8 - 16 November 2024: Midterm Examinations
2 December - 20 December 2024: Period for entering courses to be offered in Spring 2024-2025
20 December 2024: Last day for course withdrawal
30 December 2024: Last day of classes
3 - 18 January 2025: Final examinations
23 January 2025: Last day for the submission of Fall 2024-2025 letter grades to the system
24 - 31 January 2025: Resit Examinations
7 February 2025: Fall Term Graduation Ceremony

SPRING SEMESTER
3 February - 7 March 2025: Orientation program for new students
5 - 28 February 2025: English Placement and Proficiency Test
12 - 14 February 2025: Course registration with the approval of the advisor
14 February 2025: Last day to apply for change of program and course exemptions
17 February 2025: Classes commence
14 March 2025: Last day for add and drop courses; last day for late registration
19 - 26 April 2025: Midterm examinations
9 May 2025: Last day for course withdrawal
4 June 2025: Last day of classes
10 - 21 June 2025: Final examinations
25 June 2025: Last day for the submission of Spring 2024-2025 letter grades to the system
4 July 2025: Spring Term Graduation Ceremony

SUMMER SEMESTER
7 - 11 July 2025: Course registration with the approval of the advisor
14 July 2025: Classes commence
25 July 2025: Last day for late registration
31 July 2025: Last day for add and drop courses
8 August 2025: Last day for course withdrawal
29 August 2025: Last day of classes
1 - 3 September 2025: Final examinations
12 September 2025: Fall Term Graduation Ceremony`
