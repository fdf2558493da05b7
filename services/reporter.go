package services

import (
	"fmt"
	"strings"

	"customer-analytics/models"
)

// PrintResults formats and prints the analysis results to terminal
func PrintResults(res *models.Results) {
	border := strings.Repeat("═", 55)
	thin := strings.Repeat("─", 55)

	fmt.Printf("\n╔%s╗\n", border)
	fmt.Printf("║%s║\n", center("CUSTOMER ANALYTICS — PREDICTION RUN ", 55))
	fmt.Printf("╚%s╝\n", border)

	fmt.Printf("\n OVERVIEW\n%s\n", thin)
	fmt.Printf("  Run ID              : %s\n", res.RunID)
	fmt.Printf("  Customers           : %d\n", res.Dataset.TotalCustomers)
	fmt.Printf("  Transactions        : %d\n", res.Dataset.TotalTransactions)
	fmt.Printf("  Total Revenue       : $%.2f\n", res.Dataset.TotalRevenue)
	fmt.Printf("  Avg Order Value     : $%.2f\n", res.Dataset.AvgOrderValue)

	if c := res.Churn; c != nil {
		fmt.Printf("\n CHURN PREDICTION\n%s\n", thin)
		if c.Message != "" {
			fmt.Printf("  %s\n", c.Message)
		} else {
			fmt.Printf("  Model Accuracy      : %.1f%%\n", c.ModelAccuracy*100)
			fmt.Printf("  Predicted Churners  : %d / %d\n", c.Summary.PredictedChurners, c.Summary.TotalCustomers)
			fmt.Printf("  High Risk Customers : %d ($%.2f at risk)\n", c.HighRisk.Count, c.HighRisk.TotalValueAtRisk)
			if len(c.FeatureImportance) > 0 {
				fmt.Printf("  Top Churn Drivers   :\n")
				max := 5
				if len(c.FeatureImportance) < max {
					max = len(c.FeatureImportance)
				}
				for i := 0; i < max; i++ {
					fi := c.FeatureImportance[i]
					fmt.Printf("    %d. %-22s %.3f\n", i+1, fi.Feature, fi.Importance)
				}
			}
		}
	}

	if v := res.CLV; v != nil {
		fmt.Printf("\n LIFETIME VALUE\n%s\n", thin)
		if v.Message != "" {
			fmt.Printf("  %s\n", v.Message)
		} else {
			fmt.Printf("  R² / RMSE           : %.3f / %.2f\n", v.Performance.R2, v.Performance.RMSE)
			fmt.Printf("  Active Customers    : %d\n", v.Summary.TotalActiveCustomers)
			fmt.Printf("  Total CLV Potential : $%.2f\n", v.Summary.TotalCLVPotential)
			for _, s := range v.Segments {
				bar := strings.Repeat("▓", scaleBar(s.CustomerCount, v.Summary.TotalActiveCustomers))
				fmt.Printf("  %-8s %4d  $%10.2f  %s\n", s.Label+":", s.CustomerCount, s.AvgPredictedValue, bar)
			}
		}
	}

	if s := res.Sales; s != nil {
		fmt.Printf("\n 7-DAY SALES FORECAST\n%s\n", thin)
		fmt.Printf("  Avg Daily Revenue   : $%.2f\n", s.RecentPerformance.AvgDailyRevenue)
		fmt.Printf("  Growth Rate         : %.1f%%\n", s.RecentPerformance.GrowthRatePct)
		fmt.Printf("  Forecast Total      : $%.2f\n", s.ForecastTotal)
		for i, v := range s.Next7Days {
			fmt.Printf("    Day %d : $%.2f\n", i+1, v)
		}
	}

	if d := res.Demand; d != nil && len(d.TopProducts) > 0 {
		fmt.Printf("\n TOP %d PRODUCTS BY DEMAND\n%s\n", len(d.TopProducts), thin)
		for i, p := range d.TopProducts {
			name := p.ProductName
			if name == "" {
				name = fmt.Sprintf("product %d", p.ProductID)
			}
			fmt.Printf("  %2d. %-35s qty=%-5d score=%.2f\n", i+1, truncate(name, 35), p.TotalQuantity, p.DemandScore)
		}
	}

	if r := res.Risk; r != nil {
		fmt.Printf("\n RISK SEGMENTATION\n%s\n", thin)
		if r.Message != "" {
			fmt.Printf("  %s\n", r.Message)
		} else {
			for _, s := range r.Segments {
				fmt.Printf("  %-12s %5d customers  $%12.2f  avg p=%.2f\n",
					s.Label+":", s.CustomerCount, s.TotalValue, s.AvgChurnProb)
			}
			fmt.Printf("  High-Value At Risk  : %d customers ($%.2f)\n",
				r.HighValueAtRisk.Count, r.HighValueAtRisk.TotalValue)
		}
	}

	fmt.Printf("\n%s\n\n", border)
}

func scaleBar(count, total int) int {
	if total == 0 {
		return 0
	}
	n := count * 30 / total
	if n < 1 && count > 0 {
		n = 1
	}
	return n
}

func center(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return s
	}
	pad := (width - len(runes)) / 2
	return strings.Repeat(" ", pad) + s + strings.Repeat(" ", width-len(runes)-pad)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
