package application

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dvdk01/loadsim/internal/config"
	"github.com/dvdk01/loadsim/internal/schema"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type cliApplication struct {
	out io.Writer
	mu  sync.Mutex
}

func NewCLIApplication(out io.Writer) *cliApplication {
	return &cliApplication{out: out}
}

func (ca *cliApplication) PrintConfig(cfg config.Config, endpoints int) {
	ca.mu.Lock()
	defer ca.mu.Unlock()

	fmt.Fprintln(ca.out, "🚀 Starting API Load Simulation")
	fmt.Fprintln(ca.out, "📊 Configuration:")
	fmt.Fprintf(ca.out, "   - Target: %s\n", cfg.Target)
	fmt.Fprintf(ca.out, "   - Total Requests: %d\n", cfg.TotalRequests)
	fmt.Fprintf(ca.out, "   - Delay Between Requests: %dms\n", cfg.DelayMillis)
	fmt.Fprintf(ca.out, "   - Concurrent Requests: %d\n", cfg.BatchConcurrency)
	fmt.Fprintf(ca.out, "   - Endpoints: %d\n", endpoints)
	fmt.Fprintln(ca.out)
}

// Progress rewrites the current line with the share of requests completed.
func (ca *cliApplication) Progress(done, total int) {
	ca.mu.Lock()
	defer ca.mu.Unlock()

	fmt.Fprintf(ca.out, "\r📈 Progress: %d%% (%d/%d)", percent(done, total), done, total)
}

func percent(done, total int) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}

func (ca *cliApplication) Render(report schema.Report) {
	ca.mu.Lock()
	defer ca.mu.Unlock()

	fmt.Fprint(ca.out, "\n\n")
	if report.Interrupted {
		fmt.Fprintln(ca.out, "🛑 Simulation Interrupted!")
	} else {
		fmt.Fprintln(ca.out, "📊 Simulation Complete!")
	}
	fmt.Fprintln(ca.out, strings.Repeat("=", 50))

	ca.dumpSummary(report)
	ca.dumpEndpoints(report)
	ca.dumpLatency(report)
}

func colorizeStatus(successRate float64, str string) string {
	switch {
	case successRate >= 90:
		return text.FgGreen.Sprint(str)
	case successRate >= 50:
		return text.FgYellow.Sprint(str)
	default:
		return text.FgRed.Sprint(str)
	}
}

func colorizeStatusCode(code int, txt string) string {
	switch {
	case code >= 200 && code < 300:
		return text.FgGreen.Sprint(txt)
	case code >= 300 && code < 400:
		return text.FgBlue.Sprint(txt)
	case code >= 400 && code < 500:
		return text.FgYellow.Sprint(txt)
	case code >= 500:
		return text.FgRed.Sprint(txt)
	default:
		return txt
	}
}

func millis(d time.Duration) string {
	return fmt.Sprintf("%.2fms", float64(d)/float64(time.Millisecond))
}

func (ca *cliApplication) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(ca.out)
	t.SetStyle(table.StyleLight)
	return t
}

func (ca *cliApplication) dumpSummary(report schema.Report) {
	t := ca.newTable()
	t.SetTitle("Run " + report.RunID)

	success := fmt.Sprintf("%d (%.1f%%)", report.SuccessCount, report.SuccessRate)
	if report.Total > 0 {
		success = colorizeStatus(report.SuccessRate, success)
	}

	codes := make([]int, 0, len(report.StatusCodes))
	for code := range report.StatusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	statusCodes := ""
	for _, code := range codes {
		statusCodes += colorizeStatusCode(code, fmt.Sprintf("%d:%d", code, report.StatusCodes[code])) + " "
	}
	if statusCodes == "" {
		statusCodes = "NO STATUS CODE"
	}

	t.AppendRows([]table.Row{
		{"📈 Total Requests", report.Total},
		{"✅ Successful", success},
		{"❌ Errors", report.ErrorCount},
		{"⏱️  Average Response Time", millis(report.AvgDuration)},
		{"🚀 Requests/Second", fmt.Sprintf("%.2f", report.Throughput)},
		{"⏰ Total Duration", fmt.Sprintf("%dms", report.WallClock.Milliseconds())},
		{"Status Codes", strings.TrimSpace(statusCodes)},
	})
	t.Render()
}

func (ca *cliApplication) dumpEndpoints(report schema.Report) {
	fmt.Fprintln(ca.out, "\n📊 Endpoint Breakdown:")
	if len(report.Endpoints) == 0 {
		fmt.Fprintln(ca.out, "   no requests completed")
		return
	}

	t := ca.newTable()
	t.AppendHeader(table.Row{"Endpoint", "Requests", "Success", "Avg Duration"})

	// first appearance order, as recorded
	for _, e := range report.Endpoints {
		rate := e.SuccessRate()
		t.AppendRow(table.Row{
			e.Name,
			e.Count,
			colorizeStatus(rate, fmt.Sprintf("%.1f%%", rate)),
			millis(e.AvgDuration()),
		})
	}
	t.Render()
}

func (ca *cliApplication) dumpLatency(report schema.Report) {
	if report.Total == 0 {
		return
	}
	t := ca.newTable()
	t.AppendHeader(table.Row{"P50", "P90", "P99", "Max"})
	t.AppendRow(table.Row{
		millis(report.Latency.P50),
		millis(report.Latency.P90),
		millis(report.Latency.P99),
		millis(report.Latency.Max),
	})
	t.Render()
}
