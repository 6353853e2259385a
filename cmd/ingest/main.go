package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/joho/godotenv"
	"github.com/mkhalor/juno/internal/config"
	"github.com/mkhalor/juno/internal/ingest"
	"github.com/mkhalor/juno/internal/retrieval"
	"github.com/mkhalor/juno/pkg/utils"
	"github.com/sirupsen/logrus"
)

// PolicyPageConfig describes one HR policy page to ingest.
type PolicyPageConfig struct {
	Title    string
	Path     string
	Priority int
}

// PolicySection is a heading-delimited slice of a policy page.
type PolicySection struct {
	Title   string
	Content string
	Anchor  string
}

// PolicyIngester scrapes HR policy pages and uploads them to the
// knowledge base.
type PolicyIngester struct {
	knowledgeBase *retrieval.Service
	processor     *ingest.PolicyProcessor
	logger        *logrus.Logger
	processed     map[string]bool
	errors        []error
}

var (
	// Standard HR handbook pages, highest priority first.
	policyPages = []PolicyPageConfig{
		{Title: "Leave_policy", Priority: 10, Path: "/policies/leave"},
		{Title: "Sick_leave", Priority: 10, Path: "/policies/sick-leave"},
		{Title: "Remote_work", Priority: 9, Path: "/policies/remote-work"},
		{Title: "Code_of_conduct", Priority: 9, Path: "/policies/code-of-conduct"},
		{Title: "Payroll_and_compensation", Priority: 8, Path: "/policies/payroll"},
		{Title: "Benefits_overview", Priority: 8, Path: "/policies/benefits"},
		{Title: "Parental_leave", Priority: 7, Path: "/policies/parental-leave"},
		{Title: "Expense_reimbursement", Priority: 6, Path: "/policies/expenses"},
		{Title: "Onboarding_guide", Priority: 6, Path: "/policies/onboarding"},
		{Title: "Grievance_procedure", Priority: 5, Path: "/policies/grievances"},
	}

	baseURL    = flag.String("base-url", "", "Base URL of the HR policy portal (required)")
	dryRun     = flag.Bool("dry-run", false, "Don't upload to the knowledge base, just print what would be uploaded")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	pageLimit  = flag.Int("limit", 0, "Limit number of pages to process (0 = all)")
	concurrent = flag.Int("concurrent", 2, "Number of concurrent requests")
	delay      = flag.Duration("delay", 2*time.Second, "Delay between requests")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	utils.InitLogger()
	logger := utils.GetLogger()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if *baseURL == "" {
		logger.Fatal("-base-url is required")
	}

	logger.Info("Starting HR policy ingester...")

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	var knowledgeBase *retrieval.Service
	if !*dryRun {
		if err := cfg.ValidateRetrieval(); err != nil {
			logger.WithError(err).Fatal("Retrieval configuration validation failed")
		}

		client := retrieval.NewClient(cfg.Retrieval.BaseURL, cfg.Retrieval.APIKey, logger)
		knowledgeBase = retrieval.NewService(client, logger)
	}

	ingester := &PolicyIngester{
		knowledgeBase: knowledgeBase,
		processor:     ingest.NewPolicyProcessor(),
		logger:        logger,
		processed:     make(map[string]bool),
		errors:        make([]error, 0),
	}

	if err := ingester.IngestPolicies(context.Background()); err != nil {
		logger.WithError(err).Fatal("Policy ingestion failed")
	}

	logger.Info("Policy ingestion completed successfully!")
}

func (pi *PolicyIngester) IngestPolicies(ctx context.Context) error {
	pages := make([]PolicyPageConfig, len(policyPages))
	copy(pages, policyPages)

	// Sort by priority, descending.
	for i := 0; i < len(pages)-1; i++ {
		for j := i + 1; j < len(pages); j++ {
			if pages[i].Priority < pages[j].Priority {
				pages[i], pages[j] = pages[j], pages[i]
			}
		}
	}

	if *pageLimit > 0 && *pageLimit < len(pages) {
		pages = pages[:*pageLimit]
		pi.logger.WithField("limit", *pageLimit).Info("Limited pages to process")
	}

	pi.logger.WithField("total_pages", len(pages)).Info("Processing policy pages")

	for i, page := range pages {
		pi.logger.WithFields(logrus.Fields{
			"page":     page.Title,
			"priority": page.Priority,
			"progress": fmt.Sprintf("%d/%d", i+1, len(pages)),
		}).Info("Processing page")

		if err := pi.processPage(ctx, page); err != nil {
			pi.logger.WithError(err).WithField("page", page.Title).Error("Failed to process page")
			pi.errors = append(pi.errors, fmt.Errorf("failed to process %s: %w", page.Title, err))
			continue
		}

		pi.processed[page.Title] = true

		time.Sleep(500 * time.Millisecond)
	}

	pi.logger.WithFields(logrus.Fields{
		"processed": len(pi.processed),
		"errors":    len(pi.errors),
	}).Info("Policy ingestion completed")

	if len(pi.errors) > 0 {
		pi.logger.Warn("Some pages failed to process:")
		for _, err := range pi.errors {
			pi.logger.WithError(err).Warn("Processing error")
		}
	}

	return nil
}

func (pi *PolicyIngester) processPage(ctx context.Context, page PolicyPageConfig) error {
	var content string
	var sections []PolicySection
	var processingError error

	pageURL := strings.TrimRight(*baseURL, "/") + page.Path

	c := colly.NewCollector(
		colly.UserAgent("JunoIngest/1.0"),
	)

	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: *concurrent,
		Delay:       *delay,
	})

	c.SetRequestTimeout(30 * time.Second)

	c.OnHTML("main, article, #content", func(e *colly.HTMLElement) {
		if content != "" {
			return
		}
		content = pi.extractPageContent(e)
		sections = pi.extractSections(e)

		pi.logger.WithFields(logrus.Fields{
			"page":           page.Title,
			"content_length": len(content),
			"sections":       len(sections),
		}).Debug("Content extracted")
	})

	c.OnError(func(r *colly.Response, err error) {
		processingError = err
	})

	if err := c.Visit(pageURL); err != nil {
		return fmt.Errorf("failed to visit page: %w", err)
	}

	if processingError != nil {
		return fmt.Errorf("processing error: %w", processingError)
	}

	if content == "" {
		return fmt.Errorf("no content extracted from page")
	}

	category := pi.processor.Categorize(content)

	if *dryRun {
		pi.logger.WithFields(logrus.Fields{
			"page":           page.Title,
			"category":       category,
			"content_length": len(content),
			"sections":       len(sections),
			"words":          pi.processor.CountWords(content),
		}).Info("DRY RUN: Would upload content")
		return nil
	}

	if err := pi.upload(ctx, page.Title, content, pageURL); err != nil {
		return fmt.Errorf("failed to upload main content: %w", err)
	}

	// Sections uploaded separately so retrieval can return focused passages.
	for _, section := range sections {
		sectionTitle := fmt.Sprintf("%s/%s", page.Title, section.Title)
		if err := pi.upload(ctx, sectionTitle, section.Content, pageURL+"#"+section.Anchor); err != nil {
			pi.logger.WithError(err).WithField("section", sectionTitle).Warn("Failed to upload section")
		}
	}

	return nil
}

func (pi *PolicyIngester) extractPageContent(e *colly.HTMLElement) string {
	e.DOM.Find("nav, header, footer, aside, .breadcrumb, .sidebar").Remove()
	return pi.processor.CleanContent(e.DOM.Text())
}

func (pi *PolicyIngester) extractSections(e *colly.HTMLElement) []PolicySection {
	var sections []PolicySection

	e.DOM.Find("h2, h3").Each(func(i int, heading *goquery.Selection) {
		title := strings.TrimSpace(heading.Text())
		if title == "" {
			return
		}

		anchor, _ := heading.Attr("id")

		var body strings.Builder
		heading.NextUntil("h2, h3").Each(func(j int, sibling *goquery.Selection) {
			text := strings.TrimSpace(sibling.Text())
			if text != "" {
				body.WriteString(text + "\n")
			}
		})

		sectionContent := pi.processor.CleanContent(body.String())

		// Skip boilerplate headings with no real body.
		if len(sectionContent) > 50 {
			sections = append(sections, PolicySection{
				Title:   title,
				Content: sectionContent,
				Anchor:  anchor,
			})
		}
	})

	return sections
}

func (pi *PolicyIngester) upload(ctx context.Context, title, content, pageURL string) error {
	if pi.knowledgeBase == nil {
		return fmt.Errorf("knowledge base service not initialized")
	}

	pi.logger.WithFields(logrus.Fields{
		"title":          title,
		"content_length": len(content),
		"url":            pageURL,
	}).Debug("Uploading policy content")

	return pi.knowledgeBase.AddPolicyContent(ctx, title, content, pageURL)
}
