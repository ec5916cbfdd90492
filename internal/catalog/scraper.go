package catalog

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/msto63/kurswerk/internal/prereq"
	kwerror "github.com/msto63/kurswerk/pkg/core/error"
	"github.com/msto63/kurswerk/pkg/core/logging"
	"github.com/msto63/kurswerk/pkg/core/version"
)

const (
	courseSelector      = "h2.course-name"
	extraFieldsSelector = "div.extraFields"
	creditsSelector     = "div.credits"
	requirementsHeading = "Requirements"
	maxCatalogPageBytes = 16 << 20
)

// Config holds configuration for the scraper
type Config struct {
	Timeout   time.Duration
	UserAgent string
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Timeout:   30 * time.Second,
		UserAgent: version.UserAgent(),
	}
}

// Scraper reads course records from a catalog page
type Scraper struct {
	httpClient *http.Client
	userAgent  string
	logger     *logging.Logger
}

// NewScraper creates a new scraper
func NewScraper(cfg Config) *Scraper {
	if cfg.UserAgent == "" {
		cfg.UserAgent = version.UserAgent()
	}
	return &Scraper{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		userAgent:  cfg.UserAgent,
		logger:     logging.New("catalog"),
	}
}

// WithHTTPClient replaces the HTTP client
func (s *Scraper) WithHTTPClient(client *http.Client) *Scraper {
	s.httpClient = client
	return s
}

// WithLogger replaces the logger
func (s *Scraper) WithLogger(logger *logging.Logger) *Scraper {
	s.logger = logger
	return s
}

// Fetch downloads the catalog page at url and extracts its courses
func (s *Scraper) Fetch(ctx context.Context, url string) ([]Course, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, kwerror.Wrap(err, "invalid catalog URL").
			WithCode(kwerror.CodeInvalidInput).WithDetail("url", url)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, kwerror.Wrap(err, "failed to fetch catalog").
			WithCode(kwerror.CodeNetworkError).WithDetail("url", url).WithOperation("fetch")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, kwerror.Newf("catalog returned status %d", resp.StatusCode).
			WithCode(kwerror.CodeExternalServiceError).WithDetail("url", url).WithOperation("fetch")
	}

	courses, err := Extract(io.LimitReader(resp.Body, maxCatalogPageBytes))
	if err != nil {
		return nil, kwerror.Wrap(err, "failed to extract courses").WithDetail("url", url)
	}

	s.logger.Info("Catalog fetched",
		"url", url,
		"courses", len(courses),
		"duration_ms", time.Since(start).Milliseconds())

	return courses, nil
}

// Extract reads course records from catalog HTML.
//
// Every h2.course-name starts a course. Credits and requirements are taken
// from the div.credits and div.extraFields blocks that follow it before the
// next course heading; an extraFields block counts only if its h4 reads
// "Requirements" and its nearest preceding course heading is this course.
func Extract(r io.Reader) ([]Course, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, kwerror.Wrap(err, "failed to parse catalog HTML").
			WithCode(kwerror.CodeInvalidFormat).WithOperation("extract")
	}

	var (
		courses []Course
		current *Course
		heading *goquery.Selection
	)

	flush := func() {
		if current != nil {
			courses = append(courses, *current)
		}
	}

	selector := strings.Join([]string{courseSelector, extraFieldsSelector, creditsSelector}, ", ")
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		switch {
		case sel.Is(courseSelector):
			flush()
			heading = sel
			current = newCourse(sel)

		case current == nil:
			// blocks before the first course heading

		case sel.Is(creditsSelector):
			if current.Credits == 0 {
				current.Credits = parseCredits(sel)
			}

		case sel.Is(extraFieldsSelector):
			if current.HasRequirements() || !belongsTo(sel, heading) {
				return
			}
			if strings.TrimSpace(sel.Find("h4").First().Text()) != requirementsHeading {
				return
			}
			current.Requirements = cleanRequirements(sel.Find("p").First().Text())
		}
	})
	flush()

	return courses, nil
}

func newCourse(heading *goquery.Selection) *Course {
	name := normalizeSpace(heading.Text())

	code := normalizeSpace(heading.Find("span").First().Text())
	if code == "" {
		code = codeFromName(name)
	}

	title := strings.TrimSpace(strings.TrimPrefix(name, code))

	return &Course{
		Code:         code,
		Title:        title,
		Requirements: prereq.NoneMarker,
	}
}

// belongsTo reports whether the nearest course heading before block is heading
func belongsTo(block, heading *goquery.Selection) bool {
	prev := block.PrevAllFiltered(courseSelector).First()
	if prev.Length() == 0 {
		// heading is not a sibling, fall back to document order
		return true
	}
	return prev.IsSelection(heading)
}

func parseCredits(sel *goquery.Selection) int {
	text := sel.Clone()
	text.Find("h3").Remove()
	digits := courseNumberPattern.FindString(text.Text())
	if digits == "" {
		return 0
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
