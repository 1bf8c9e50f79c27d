package advisor

import "fmt"

// advicePrompt asks for free-text financial advice in markdown.
func advicePrompt(cleanedText string) string {
	return "You are a brilliant financial advisor. Analyze the following transaction text and give:\n" +
		"1. Spending summary\n" +
		"2. Poor spending habits\n" +
		"3. Budget plan\n" +
		"4. Category spend breakdown\n" +
		"5. Investment suggestions\n" +
		"6. Ways to save ₹5,000/month\n\n" +
		"Use markdown with headings and bullets.\n\n" +
		cleanedText
}

// chartPrompt asks for a strict-JSON spending breakdown. The schema keys
// drive the charts page, so the prompt spells out every field.
func chartPrompt(cleanedText string) string {
	return fmt.Sprintf(`You are a financial data analyst. From this cleaned transaction text, return:
{
  "category_spending": [{"category": "...", "amount": ...}],
  "top_merchants": [{"merchant": "...", "amount": ...}],
  "monthly_spending": [{"month": "...", "amount": ...}],
  "credit_vs_debit": {"total_credit": ..., "total_debit": ...},
  "daily_spending": [{"date": "YYYY-MM-DD", "debit": ..., "credit": ...}],
  "essentials_vs_discretionary": [{"type": "Essential", "amount": ...}, {"type": "Discretionary", "amount": ...}],
  "cumulative_spending": [{"date": "YYYY-MM-DD", "cumulative_debit": ...}],
  "weekday_spending": [{"weekday": "Monday", "amount": ...}],
  "time_of_day_spending": [{"period": "Morning", "amount": ...}],
  "income_vs_spend_trend": [{"date": "YYYY-MM-DD", "debit": ..., "credit": ...}]
}
Only return valid JSON. If any data missing, guess it.
%s`, cleanedText)
}
