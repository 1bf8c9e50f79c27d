package charts

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderPage writes the full charts page as HTML. Each chart only renders
// when its slice of the payload is present, so a partial model response
// still produces a useful page.
func RenderPage(w io.Writer, p *Payload) error {
	page := components.NewPage()
	page.PageTitle = "Spending Charts"
	page.SetLayout(components.PageFlexLayout)

	if len(p.CategorySpending) > 0 {
		page.AddCharts(categoryPie(p.CategorySpending))
	}
	if len(p.TopMerchants) > 0 {
		page.AddCharts(merchantBar(MergeTopMerchants(p.TopMerchants)))
	}
	if len(p.MonthlySpending) > 0 {
		page.AddCharts(monthlyBar(p.MonthlySpending))
	}
	if p.CreditVsDebit.TotalCredit > 0 || p.CreditVsDebit.TotalDebit > 0 {
		page.AddCharts(creditDebitPie(p.CreditVsDebit))
	}
	if len(p.DailySpending) > 0 {
		page.AddCharts(flowLine("Daily Debit vs Credit", p.DailySpending))
	}
	if len(p.EssentialsVsDiscretionary) > 0 {
		page.AddCharts(essentialsPie(p.EssentialsVsDiscretionary))
	}
	if len(p.CumulativeSpending) > 0 {
		page.AddCharts(cumulativeLine(p.CumulativeSpending))
	}
	if len(p.WeekdaySpending) > 0 {
		page.AddCharts(weekdayBar(p.WeekdaySpending))
	}
	if len(p.TimeOfDaySpending) > 0 {
		page.AddCharts(timeOfDayBar(p.TimeOfDaySpending))
	}
	if len(p.IncomeVsSpendTrend) > 0 {
		page.AddCharts(flowLine("Income vs Spend Trend", p.IncomeVsSpendTrend))
	}

	return page.Render(w)
}

func categoryPie(rows []CategoryAmount) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Category-wise Spending"}))

	data := make([]opts.PieData, 0, len(rows))
	for _, r := range rows {
		data = append(data, opts.PieData{Name: r.Category, Value: r.Amount.Rupees()})
	}

	pie.AddSeries("spending", data).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: ₹{c}"}))
	return pie
}

func merchantBar(rows []MerchantAmount) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Top Merchants"}))

	names := make([]string, 0, len(rows))
	data := make([]opts.BarData, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Merchant)
		data = append(data, opts.BarData{Value: r.Amount.Rupees()})
	}

	bar.SetXAxis(names).AddSeries("amount", data)
	bar.XYReversal() // horizontal bars, merchant names on the Y axis
	return bar
}

func monthlyBar(rows []MonthAmount) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Monthly Spending"}))

	months := make([]string, 0, len(rows))
	data := make([]opts.BarData, 0, len(rows))
	for _, r := range rows {
		months = append(months, r.Month)
		data = append(data, opts.BarData{Value: r.Amount.Rupees()})
	}

	bar.SetXAxis(months).AddSeries("amount", data)
	return bar
}

func creditDebitPie(t Totals) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Credit vs Debit"}))

	pie.AddSeries("flow", []opts.PieData{
		{Name: "Credit", Value: t.TotalCredit.Rupees()},
		{Name: "Debit", Value: t.TotalDebit.Rupees()},
	}).SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: ₹{c}"}))
	return pie
}

func essentialsPie(rows []TypeAmount) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Essentials vs Discretionary"}))

	data := make([]opts.PieData, 0, len(rows))
	for _, r := range rows {
		data = append(data, opts.PieData{Name: r.Type, Value: r.Amount.Rupees()})
	}

	pie.AddSeries("split", data)
	return pie
}

func flowLine(title string, rows []DailyFlow) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	dates := make([]string, 0, len(rows))
	debits := make([]opts.LineData, 0, len(rows))
	credits := make([]opts.LineData, 0, len(rows))
	for _, r := range rows {
		dates = append(dates, r.Date)
		debits = append(debits, opts.LineData{Value: r.Debit.Rupees()})
		credits = append(credits, opts.LineData{Value: r.Credit.Rupees()})
	}

	line.SetXAxis(dates).
		AddSeries("debit", debits).
		AddSeries("credit", credits)
	return line
}

func cumulativeLine(rows []CumulativePoint) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Cumulative Spending"}))

	dates := make([]string, 0, len(rows))
	data := make([]opts.LineData, 0, len(rows))
	for _, r := range rows {
		dates = append(dates, r.Date)
		data = append(data, opts.LineData{Value: r.CumulativeDebit.Rupees()})
	}

	line.SetXAxis(dates).AddSeries("cumulative debit", data)
	return line
}

func weekdayBar(rows []WeekdayAmount) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Weekday Spending"}))

	days := make([]string, 0, len(rows))
	data := make([]opts.BarData, 0, len(rows))
	for _, r := range rows {
		days = append(days, r.Weekday)
		data = append(data, opts.BarData{Value: r.Amount.Rupees()})
	}

	bar.SetXAxis(days).AddSeries("amount", data)
	return bar
}

func timeOfDayBar(rows []PeriodAmount) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Time of Day Spending"}))

	periods := make([]string, 0, len(rows))
	data := make([]opts.BarData, 0, len(rows))
	for _, r := range rows {
		periods = append(periods, r.Period)
		data = append(data, opts.BarData{Value: r.Amount.Rupees()})
	}

	bar.SetXAxis(periods).AddSeries("amount", data)
	return bar
}
