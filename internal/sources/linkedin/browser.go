package linkedin

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"

	"github.com/alexryan/leadscout/internal/types"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Browser scrapes public profile pages with a headless browser. A politeness
// limiter spaces page operations so the target sees at most one navigation
// per configured delay. Requires Chrome/Chromium on the host.
type Browser struct {
	limiter *rate.Limiter
	timeout time.Duration
}

// NewBrowser builds a live scraper with the given politeness delay between
// page operations.
func NewBrowser(delay, timeout time.Duration) *Browser {
	if delay <= 0 {
		delay = 2 * time.Second
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Browser{
		limiter: rate.NewLimiter(rate.Every(delay), 1),
		timeout: timeout,
	}
}

// SearchCompany renders the company search page and extracts the first
// result's descriptor fields.
func (b *Browser) SearchCompany(ctx context.Context, name string) (*Company, error) {
	searchURL := fmt.Sprintf(
		"https://www.linkedin.com/search/results/companies/?keywords=%s",
		url.QueryEscape(name))

	html, err := b.render(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}

	result := doc.Find("[data-test-id='search-result'], .entity-result").First()
	if result.Length() == 0 {
		return nil, nil
	}

	company := &Company{
		Name:      cleanText(firstText(result, ".entity-result__title-text", "h3")),
		ScrapedAt: float64(time.Now().Unix()),
	}
	if company.Name == "" {
		company.Name = name
	}
	if href, ok := result.Find("a[href*='/company/']").First().Attr("href"); ok {
		company.LinkedInURL = absoluteURL(href)
	}
	company.Industry, company.Headquarters = splitSubtitle(
		cleanText(firstText(result, ".entity-result__primary-subtitle", ".subline-level-1")))
	company.Description = cleanText(firstText(result, ".entity-result__summary", "p"))
	company.CompanySize = cleanText(firstText(result, ".entity-result__secondary-subtitle", ".subline-level-2"))
	company.EmployeeCount = parseEmployeeCount(company.CompanySize)

	return company, nil
}

// ScrapeEmployees renders the people search page for the company and
// extracts up to limit rows.
func (b *Browser) ScrapeEmployees(ctx context.Context, name string, limit int) ([]Employee, error) {
	searchURL := fmt.Sprintf(
		"https://www.linkedin.com/search/results/people/?keywords=%s",
		url.QueryEscape(name))

	html, err := b.render(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse people results: %w", err)
	}

	var employees []Employee
	doc.Find("[data-test-id='search-result'], .entity-result").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if limit > 0 && len(employees) >= limit {
			return false
		}
		emp := Employee{
			Name:     cleanText(firstText(row, ".entity-result__title-text span[aria-hidden='true']", ".entity-result__title-text")),
			Title:    cleanText(firstText(row, ".entity-result__primary-subtitle", ".subline-level-1")),
			Location: cleanText(firstText(row, ".entity-result__secondary-subtitle", ".subline-level-2")),
			Company:  name,
		}
		if emp.Name == "" {
			return true
		}
		if href, ok := row.Find("a[href*='/in/']").First().Attr("href"); ok {
			emp.ProfileURL = absoluteURL(href)
		}
		emp.SeniorityLevel = seniorityFromTitle(emp.Title)
		emp.IsDecisionMaker = types.IsSeniorTitle(emp.Title)
		employees = append(employees, emp)
		return true
	})

	return employees, nil
}

// render navigates to a URL in a fresh headless browser context and returns
// the rendered HTML.
func (b *Browser) render(ctx context.Context, pageURL string) (string, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return "", err
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(userAgent),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, b.timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		// Let client-side rendering settle before extraction.
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}
	return html, nil
}

func firstText(sel *goquery.Selection, selectors ...string) string {
	for _, s := range selectors {
		if found := sel.Find(s); found.Length() > 0 {
			return found.First().Text()
		}
	}
	return ""
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// splitSubtitle splits a "Industry · Location" subtitle into its parts.
func splitSubtitle(subtitle string) (industry, location string) {
	parts := strings.SplitN(subtitle, "·", 2)
	industry = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		location = strings.TrimSpace(parts[1])
	}
	return industry, location
}

func absoluteURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return "https://www.linkedin.com" + href
}

func seniorityFromTitle(title string) string {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "chief") || strings.HasPrefix(t, "ceo") ||
		strings.HasPrefix(t, "cto") || strings.HasPrefix(t, "cfo") ||
		strings.Contains(t, "founder"):
		return types.SeniorityCLevel
	case strings.Contains(t, "vp") || strings.Contains(t, "vice president"):
		return types.SeniorityVP
	case strings.Contains(t, "director") || strings.Contains(t, "head of"):
		return types.SeniorityDirector
	case strings.Contains(t, "manager"):
		return types.SeniorityManager
	default:
		return types.SeniorityIC
	}
}

// parseEmployeeCount reads a "51-200 employees" style size string and
// returns the lower bound.
func parseEmployeeCount(size string) *int {
	fields := strings.FieldsFunc(size, func(r rune) bool {
		return r < '0' || r > '9'
	})
	if len(fields) == 0 {
		return nil
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil
	}
	return &n
}
