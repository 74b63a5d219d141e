package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// =============================================================================
// Response Types - Match the actual API response structure
// =============================================================================

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Cycle is one cycle as rendered by every cycle endpoint
type Cycle struct {
	Identifier      string `json:"identifier"`
	Year            int    `json:"year"`
	Ordinal         int    `json:"ordinal"`
	EffectiveDate   string `json:"effective_date"`
	EndDate         string `json:"end_date"`
	CycleLengthDays int    `json:"cycle_length_days"`
}

// CycleLookupResponse is the response for /cycles/date, /cycles/identifier and /cycles/current
type CycleLookupResponse struct {
	Date       string `json:"date,omitempty"`
	Identifier string `json:"identifier,omitempty"`
	Cycle      Cycle  `json:"cycle"`
}

// RangeResponse is the response for /cycles/range
type RangeResponse struct {
	Start  string  `json:"start"`
	End    string  `json:"end"`
	Count  int     `json:"count"`
	Cycles []Cycle `json:"cycles"`
}

// CalendarResponse is the response for /calendar/{year}
type CalendarResponse struct {
	Year   int  `json:"year"`
	Stored bool `json:"stored"`
	Cycles []struct {
		Identifier    string `json:"identifier"`
		EffectiveDate string `json:"effective_date"`
	} `json:"cycles"`
}

// HealthResponse is the response for /health
type HealthResponse struct {
	Status          string `json:"status"`
	CycleLengthDays int    `json:"cycle_length_days"`
}

// =============================================================================
// Test Runner
// =============================================================================

type TestRunner struct {
	baseURL      string
	client       *http.Client
	verbose      bool
	successCount int
	errorCount   int
	errors       []string
}

func NewTestRunner(baseURL string, verbose bool) *TestRunner {
	return &TestRunner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		verbose: verbose,
	}
}

func (tr *TestRunner) Run() {
	fmt.Println("==============================================")
	fmt.Println("AIRAC API Test Suite")
	fmt.Println("==============================================")
	fmt.Printf("Base URL: %s\n", tr.baseURL)
	fmt.Println()

	// Run test groups
	tr.testHealth()
	tr.testCurrentCycle()
	tr.testDates()
	tr.testIdentifiers()
	tr.testRange()
	tr.testCalendar()
	tr.testErrors()
	tr.testRoundTrip()

	// Print summary
	tr.printSummary()
}

// =============================================================================
// Test Groups
// =============================================================================

func (tr *TestRunner) testHealth() {
	tr.printSection("Health Check")

	resp, err := tr.get("/health")
	if err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	var health HealthResponse
	if err := tr.parseDataAs(resp, &health); err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	if health.Status == "healthy" {
		tr.recordSuccess(fmt.Sprintf("Health check passed (%d-day cycles)", health.CycleLengthDays))
	} else {
		tr.recordError("Health", fmt.Sprintf("Unexpected status: %s", health.Status))
	}
}

func (tr *TestRunner) testCurrentCycle() {
	tr.printSection("Current Cycle")

	var data CycleLookupResponse
	if err := tr.getDataAs("/api/v1/cycles/current", &data); err != nil {
		tr.recordError("Current", err.Error())
		return
	}

	if data.Date < data.Cycle.EffectiveDate || data.Date > data.Cycle.EndDate {
		tr.recordError("Current", fmt.Sprintf("today %s outside cycle %s..%s",
			data.Date, data.Cycle.EffectiveDate, data.Cycle.EndDate))
		return
	}
	tr.recordSuccess(fmt.Sprintf("Today (%s): %s", data.Date, data.Cycle.Identifier))
	tr.printCycleDetail(data.Cycle)
}

func (tr *TestRunner) testDates() {
	tr.printSection("Date Lookups")

	testCases := []struct {
		path          string
		wantIdent     string
		wantEffective string
		description   string
	}{
		{"/api/v1/cycles/date/2020-01-01", "1913", "2019-12-05", "last cycle of 2019 spans New Year"},
		{"/api/v1/cycles/date/2020-01-02", "2001", "2020-01-02", "first cycle of 2020"},
		{"/api/v1/cycles/date/2020-12-31", "2014", "2020-12-31", "14th cycle of 2020"},
		{"/api/v1/cycles/date/2004-01-21", "0313", "2003-12-25", "day before 0401"},
		{"/api/v1/cycles/date/2004-01-22", "0401", "2004-01-22", "first cycle of 2004"},
		{"/api/v1/cycles/date/2024-02-29", "2402", "2024-02-22", "leap day"},
		{"/api/v1/cycles/date/1998-01-29", "9802", "1998-01-29", "twentieth century"},
		{"/api/v1/cycles/date/2020-01-30?weeks=1", "2005", "2020-01-30", "weekly cycle"},
	}

	for _, tc := range testCases {
		var data CycleLookupResponse
		if err := tr.getDataAs(tc.path, &data); err != nil {
			tr.recordError(tc.description, err.Error())
			continue
		}
		tr.checkCycle(tc.description, data.Cycle, tc.wantIdent, tc.wantEffective)
	}
}

func (tr *TestRunner) testIdentifiers() {
	tr.printSection("Identifier Lookups")

	testCases := []struct {
		ident         string
		wantEffective string
		description   string
	}{
		{"0001", "2000-01-27", "first cycle of 2000"},
		{"6301", "2063-01-04", "last year of the 21st-century window"},
		{"6401", "1964-01-16", "first year of the 20th-century window"},
		{"2413", "2024-12-26", "last cycle of 2024"},
		{"2414", "2025-01-23", "ordinal past the year rolls over"},
		{"2000", "2019-12-05", "ordinal 0 is the last cycle of the previous year"},
	}

	for _, tc := range testCases {
		var data CycleLookupResponse
		if err := tr.getDataAs("/api/v1/cycles/identifier/"+tc.ident, &data); err != nil {
			tr.recordError(tc.description, err.Error())
			continue
		}
		if data.Cycle.EffectiveDate != tc.wantEffective {
			tr.recordError(tc.description, fmt.Sprintf("%s: got %s, want %s",
				tc.ident, data.Cycle.EffectiveDate, tc.wantEffective))
			continue
		}
		tr.recordSuccess(fmt.Sprintf("%s -> %s (%s)", tc.ident, data.Cycle.EffectiveDate, tc.description))
	}
}

func (tr *TestRunner) testRange() {
	tr.printSection("Range Lookups")

	var data RangeResponse
	if err := tr.getDataAs("/api/v1/cycles/range?start=2024-01-01&end=2024-12-31", &data); err != nil {
		tr.recordError("Range 2024", err.Error())
		return
	}

	// 2023's last cycle plus the 13 cycles starting in 2024
	if data.Count != 14 {
		tr.recordError("Range 2024", fmt.Sprintf("count = %d, want 14", data.Count))
		return
	}
	tr.recordSuccess(fmt.Sprintf("Range 2024: %d cycles (%s..%s)",
		data.Count, data.Cycles[0].Identifier, data.Cycles[len(data.Cycles)-1].Identifier))

	if tr.verbose {
		for _, cy := range data.Cycles {
			tr.printCycleDetail(cy)
		}
	}
}

func (tr *TestRunner) testCalendar() {
	tr.printSection("Year Calendars")

	for _, year := range []int{2020, 2024} {
		var data CalendarResponse
		if err := tr.getDataAs(fmt.Sprintf("/api/v1/calendar/%d", year), &data); err != nil {
			tr.recordError(fmt.Sprintf("Calendar %d", year), err.Error())
			continue
		}
		tr.recordSuccess(fmt.Sprintf("Calendar %d: %d cycles (stored=%t)", year, len(data.Cycles), data.Stored))
	}
}

func (tr *TestRunner) testErrors() {
	tr.printSection("Error Handling")

	testCases := []struct {
		path     string
		wantCode string
	}{
		{"/api/v1/cycles/date/2021-02-30", "INVALID_DATE"},
		{"/api/v1/cycles/date/yesterday", "INVALID_DATE"},
		{"/api/v1/cycles/identifier/201", "INVALID_IDENTIFIER"},
		{"/api/v1/cycles/identifier/20a1", "INVALID_IDENTIFIER"},
		{"/api/v1/cycles/range?start=2020-01-01", "BAD_REQUEST"},
		{"/api/v1/cycles/date/2020-01-01?weeks=99", "BAD_REQUEST"},
		{"/api/v1/nope", "NOT_FOUND"},
	}

	for _, tc := range testCases {
		apiResp, status, err := tr.getAny(tc.path)
		if err != nil {
			tr.recordError(tc.path, err.Error())
			continue
		}
		if apiResp.Success || apiResp.Error == nil {
			tr.recordError(tc.path, fmt.Sprintf("HTTP %d: expected an error response", status))
			continue
		}
		if apiResp.Error.Code != tc.wantCode {
			tr.recordError(tc.path, fmt.Sprintf("code = %s, want %s", apiResp.Error.Code, tc.wantCode))
			continue
		}
		tr.recordSuccess(fmt.Sprintf("%s -> %d %s", tc.path, status, tc.wantCode))
	}
}

// testRoundTrip walks a date window and checks that each cycle's identifier
// resolves back to the same effective date.
func (tr *TestRunner) testRoundTrip() {
	tr.printSection("Round Trip 2019-2021")

	start := time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, time.December, 31, 0, 0, 0, 0, time.UTC)

	failures := 0
	checked := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 13) {
		var byDate CycleLookupResponse
		if err := tr.getDataAs("/api/v1/cycles/date/"+d.Format("2006-01-02"), &byDate); err != nil {
			tr.recordError(d.Format("2006-01-02"), err.Error())
			failures++
			continue
		}

		var byIdent CycleLookupResponse
		if err := tr.getDataAs("/api/v1/cycles/identifier/"+byDate.Cycle.Identifier, &byIdent); err != nil {
			tr.recordError(byDate.Cycle.Identifier, err.Error())
			failures++
			continue
		}

		if byIdent.Cycle.EffectiveDate != byDate.Cycle.EffectiveDate {
			tr.recordError(d.Format("2006-01-02"), fmt.Sprintf("%s resolves to %s, want %s",
				byDate.Cycle.Identifier, byIdent.Cycle.EffectiveDate, byDate.Cycle.EffectiveDate))
			failures++
		}
		checked++
	}

	if failures == 0 {
		tr.recordSuccess(fmt.Sprintf("%d dates round-tripped", checked))
	}
}

// =============================================================================
// Helper Methods
// =============================================================================

func (tr *TestRunner) checkCycle(description string, cy Cycle, wantIdent, wantEffective string) {
	if cy.Identifier != wantIdent || cy.EffectiveDate != wantEffective {
		tr.recordError(description, fmt.Sprintf("got %s/%s, want %s/%s",
			cy.Identifier, cy.EffectiveDate, wantIdent, wantEffective))
		return
	}
	tr.recordSuccess(fmt.Sprintf("%s: %s (%s)", wantIdent, wantEffective, description))
	if tr.verbose {
		tr.printCycleDetail(cy)
	}
}

func (tr *TestRunner) get(path string) (*APIResponse, error) {
	apiResp, _, err := tr.getAny(path)
	if err != nil {
		return nil, err
	}

	if !apiResp.Success {
		errMsg := "unknown error"
		if apiResp.Error != nil {
			errMsg = apiResp.Error.Message
		}
		return nil, fmt.Errorf("API error: %s", errMsg)
	}

	return apiResp, nil
}

// getAny returns the decoded envelope whether or not the request succeeded.
func (tr *TestRunner) getAny(path string) (*APIResponse, int, error) {
	resp, err := tr.client.Get(tr.baseURL + path)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read error: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("parse error: %w", err)
	}

	return &apiResp, resp.StatusCode, nil
}

func (tr *TestRunner) getDataAs(path string, target interface{}) error {
	resp, err := tr.get(path)
	if err != nil {
		return err
	}
	return tr.parseDataAs(resp, target)
}

func (tr *TestRunner) parseDataAs(resp *APIResponse, target interface{}) error {
	// Re-marshal and unmarshal to convert map to struct
	dataBytes, err := json.Marshal(resp.Data)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}
	return json.Unmarshal(dataBytes, target)
}

func (tr *TestRunner) printSection(name string) {
	fmt.Println()
	fmt.Printf("--- %s ---\n", name)
	fmt.Println()
}

func (tr *TestRunner) printCycleDetail(cy Cycle) {
	fmt.Printf("    %s  %s .. %s  (%d #%d, %d days)\n",
		cy.Identifier, cy.EffectiveDate, cy.EndDate, cy.Year, cy.Ordinal, cy.CycleLengthDays)
}

func (tr *TestRunner) recordSuccess(msg string) {
	tr.successCount++
	fmt.Printf("  ✓ %s\n", msg)
}

func (tr *TestRunner) recordError(context, msg string) {
	tr.errorCount++
	errStr := fmt.Sprintf("%s: %s", context, msg)
	tr.errors = append(tr.errors, errStr)
	fmt.Printf("  ✗ %s\n", errStr)
}

func (tr *TestRunner) printSummary() {
	fmt.Println()
	fmt.Println("==============================================")
	fmt.Println("Summary")
	fmt.Println("==============================================")
	fmt.Printf("  Passed: %d\n", tr.successCount)
	fmt.Printf("  Failed: %d\n", tr.errorCount)
	fmt.Println()

	if tr.errorCount > 0 {
		fmt.Println("Failures:")
		for _, err := range tr.errors {
			fmt.Printf("  • %s\n", err)
		}
		fmt.Println()
	}

	if tr.errorCount == 0 {
		fmt.Println("All tests passed! ✓")
	} else {
		fmt.Printf("Tests completed with %d failure(s)\n", tr.errorCount)
	}
}

// =============================================================================
// Main
// =============================================================================

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	verbose := flag.Bool("v", false, "Verbose output (show cycle details)")
	flag.Parse()

	// Check if server is reachable
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", *baseURL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}
	resp.Body.Close()

	runner := NewTestRunner(*baseURL, *verbose)
	runner.Run()

	// Exit with error code if tests failed
	if runner.errorCount > 0 {
		os.Exit(1)
	}
}
