package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mkhalor/juno/internal/agent"
	"github.com/mkhalor/juno/internal/config"
	"github.com/mkhalor/juno/internal/escalation"
	"github.com/mkhalor/juno/internal/feedback"
	"github.com/mkhalor/juno/internal/retrieval"
	"github.com/mkhalor/juno/internal/session"
	"github.com/mkhalor/juno/pkg/utils"
	"github.com/sirupsen/logrus"
)

const stubSentiment = "neutral"

// lastTurn holds the most recent exchange so a follow-up "rate" command can
// attach feedback to it.
type lastTurn struct {
	userQuery   string
	botResponse string
	toolsUsed   []string
	escalated   bool
	elapsed     float64
	valid       bool
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	// Keep the terminal clean, warnings and up only.
	utils.InitLogger()
	logger := utils.GetLogger()
	logger.SetLevel(logrus.WarnLevel)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.ValidateAnthropic(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	store, err := feedback.NewFileStore(cfg.Feedback.Dir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open feedback store: %v\n", err)
		os.Exit(1)
	}

	var knowledgeBase *retrieval.Service
	if cfg.ValidateRetrieval() == nil {
		client := retrieval.NewClient(cfg.Retrieval.BaseURL, cfg.Retrieval.APIKey, logger)
		knowledgeBase = retrieval.NewService(client, logger)
	}

	hrAgent := agent.New(cfg.Anthropic.APIKey, cfg.Anthropic.Model, agent.HRTools(knowledgeBase), logger)

	gate := escalation.NewGate(escalation.Config{
		ConfidenceThreshold: cfg.Escalation.ConfidenceThreshold,
		FallbackThreshold:   cfg.Escalation.FallbackThreshold,
		FormFailThreshold:   cfg.Escalation.FormFailThreshold,
		LoopThreshold:       cfg.Escalation.LoopThreshold,
		Message:             cfg.Escalation.Message,
	})
	events := escalation.NewEventLog(cfg.Escalation.LogPath, logger)
	tracker := session.NewTracker(time.Hour)

	sessionID := utils.NewSessionID()

	fmt.Println("HR Assistant. Type your question, or one of:")
	fmt.Println("  rate <1-5> [comment]   rate the last answer")
	fmt.Println("  stats                  show feedback statistics")
	fmt.Println("  recent [n]             show recent feedback")
	fmt.Println("  export                 export feedback to a file")
	fmt.Println("  quit                   exit")
	fmt.Println()

	var last lastTurn
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		switch strings.ToLower(fields[0]) {
		case "quit", "exit":
			fmt.Println("Goodbye!")
			return
		case "rate":
			handleRate(store, &last, sessionID, fields[1:])
		case "stats":
			handleStats(store)
		case "recent":
			handleRecent(store, fields[1:])
		case "export":
			handleExport(store)
		default:
			last = handleChat(hrAgent, gate, events, tracker, sessionID, line)
		}
	}
}

func handleChat(
	hrAgent *agent.Agent,
	gate *escalation.Gate,
	events *escalation.EventLog,
	tracker *session.Tracker,
	sessionID, message string,
) lastTurn {
	tracker.Observe(sessionID, "")
	signals := tracker.Signals(sessionID, agent.ConfidenceDefault, message, stubSentiment)

	if gate.Evaluate(signals) {
		if err := events.Record(sessionID, message); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to record escalation: %v\n", err)
		}
		tracker.Reset(sessionID)

		fmt.Println(gate.Message())
		return lastTurn{
			userQuery:   message,
			botResponse: gate.Message(),
			escalated:   true,
			valid:       true,
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result := hrAgent.Respond(ctx, message)
	if result.Fallback {
		tracker.NoteFallback(sessionID)
	}

	fmt.Println(result.Response)
	if len(result.ToolsUsed) > 0 {
		fmt.Printf("(tools: %s)\n", strings.Join(result.ToolsUsed, ", "))
	}

	return lastTurn{
		userQuery:   message,
		botResponse: result.Response,
		toolsUsed:   result.ToolsUsed,
		elapsed:     result.ResponseTime,
		valid:       true,
	}
}

func handleRate(store feedback.Store, last *lastTurn, sessionID string, args []string) {
	if !last.valid {
		fmt.Println("Nothing to rate yet, ask a question first.")
		return
	}
	if len(args) == 0 {
		fmt.Println("Usage: rate <1-5> [comment]")
		return
	}

	rating, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Println("Usage: rate <1-5> [comment]")
		return
	}

	accepted, err := store.Record(feedback.Entry{
		SessionID:           sessionID,
		UserQuery:           last.userQuery,
		BotResponse:         last.botResponse,
		Rating:              rating,
		FeedbackText:        strings.Join(args[1:], " "),
		EscalationTriggered: last.escalated,
		ToolsUsed:           last.toolsUsed,
		ResponseTime:        last.elapsed,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to save feedback: %v\n", err)
		return
	}
	if !accepted {
		fmt.Println("Rating must be between 1 and 5.")
		return
	}

	fmt.Println("Thanks for the feedback!")
}

func handleStats(store feedback.Store) {
	stats, err := store.Stats()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to compute statistics: %v\n", err)
		return
	}

	if stats.TotalFeedback == 0 {
		fmt.Println("No feedback collected yet.")
		return
	}

	fmt.Printf("Total feedback:   %d\n", stats.TotalFeedback)
	fmt.Printf("Average rating:   %.2f\n", stats.AverageRating)
	fmt.Printf("Escalation rate:  %.2f%%\n", stats.EscalationRate)
	fmt.Println("Rating distribution:")
	for _, rating := range []string{"1", "2", "3", "4", "5"} {
		fmt.Printf("  %s: %d\n", rating, stats.RatingDistribution[rating])
	}
	if len(stats.ToolUsage) > 0 {
		fmt.Println("Tool usage:")
		for tool, count := range stats.ToolUsage {
			fmt.Printf("  %s: %d\n", tool, count)
		}
	}
}

func handleRecent(store feedback.Store, args []string) {
	limit := 5
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := store.Recent(limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load recent feedback: %v\n", err)
		return
	}

	if len(entries) == 0 {
		fmt.Println("No feedback collected yet.")
		return
	}

	for _, entry := range entries {
		fmt.Printf("[%s] %d/5  %s\n", entry.Timestamp, entry.Rating, entry.UserQuery)
		if entry.FeedbackText != "" {
			fmt.Printf("      %s\n", entry.FeedbackText)
		}
	}
}

func handleExport(store feedback.Store) {
	path, err := store.Export("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
		return
	}
	fmt.Printf("Feedback exported to %s\n", path)
}
