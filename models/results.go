package models

import "time"

// Results is the full output of one pipeline run, keyed the way the
// presentation layer consumes it. Every analysis key is always present;
// an analysis that could not be computed carries a Message instead of
// fabricated numbers.
type Results struct {
	RunID       string         `json:"run_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Dataset     DatasetSummary `json:"dataset_summary"`

	Churn            *ChurnReport      `json:"churn_prediction"`
	CLV              *CLVReport        `json:"clv_prediction"`
	Sales            *SalesForecast    `json:"sales_forecast"`
	Demand           *DemandForecast   `json:"demand_forecast"`
	ModelPerformance ModelPerformance  `json:"model_performance"`
	Risk             *RiskReport       `json:"risk_analysis"`
	Charts           Charts            `json:"charts"`
	PriorPredictions *PriorPredSummary `json:"prior_predictions,omitempty"`
}

// DatasetSummary describes the input tables of the run.
type DatasetSummary struct {
	TotalCustomers    int     `json:"total_customers"`
	TotalProducts     int     `json:"total_products"`
	TotalTransactions int     `json:"total_transactions"`
	SupportTickets    int     `json:"support_tickets"`
	TotalRevenue      float64 `json:"total_revenue"`
	AvgOrderValue     float64 `json:"avg_order_value"`
}

// FeatureImportance ranks one input variable by its contribution to the
// trained ensemble.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// ChurnReport is the churn classification result. A non-empty Message
// means the model was not computable (e.g. single-class labels).
type ChurnReport struct {
	Message           string              `json:"message,omitempty"`
	ModelAccuracy     float64             `json:"model_accuracy"`
	FeatureImportance []FeatureImportance `json:"feature_importance,omitempty"`
	HighRisk          HighRiskSummary     `json:"high_risk_customers"`
	Summary           ChurnSummary        `json:"predictions_summary"`
}

// HighRiskSummary covers customers above the high-risk probability
// threshold.
type HighRiskSummary struct {
	Count               int     `json:"count"`
	AvgChurnProbability float64 `json:"avg_churn_probability"`
	TotalValueAtRisk    float64 `json:"total_value_at_risk"`
}

// ChurnSummary covers the whole scored population.
type ChurnSummary struct {
	TotalCustomers      int     `json:"total_customers"`
	PredictedChurners   int     `json:"predicted_churners"`
	AvgChurnProbability float64 `json:"avg_churn_probability"`
}

// RegressionMetrics are held-out evaluation metrics for the value model.
type RegressionMetrics struct {
	R2   float64 `json:"r2_score"`
	RMSE float64 `json:"rmse"`
}

// ValueTier is one quantile segment of predicted customer value.
type ValueTier struct {
	Label             string  `json:"label"`
	CustomerCount     int     `json:"customer_count"`
	AvgPredictedValue float64 `json:"predicted_clv"`
	AvgCurrentSpent   float64 `json:"current_spent"`
}

// CLVReport is the lifetime-value regression result for active
// customers. A non-empty Message means it was not computable.
type CLVReport struct {
	Message     string            `json:"message,omitempty"`
	Performance RegressionMetrics `json:"model_performance"`
	Segments    []ValueTier       `json:"clv_segments,omitempty"`
	Summary     CLVSummary        `json:"predictions_summary"`
}

// CLVSummary covers all active customers scored by the value model.
type CLVSummary struct {
	TotalActiveCustomers int     `json:"total_active_customers"`
	AvgPredictedCLV      float64 `json:"avg_predicted_clv"`
	TotalCLVPotential    float64 `json:"total_clv_potential"`
}

// RecentPerformance summarizes the trailing sales window feeding the
// forecast.
type RecentPerformance struct {
	AvgDailyRevenue   float64 `json:"avg_daily_revenue"`
	AvgDailyOrders    float64 `json:"avg_daily_orders"`
	AvgDailyCustomers float64 `json:"avg_daily_customers"`
	GrowthRatePct     float64 `json:"growth_rate"`
}

// SalesForecast is the 7-day revenue extrapolation.
type SalesForecast struct {
	RecentPerformance RecentPerformance `json:"recent_performance"`
	Next7Days         []float64         `json:"next_7_days_forecast"`
	ForecastTotal     float64           `json:"forecast_total"`
}

// ProductDemand is one ranked product in the demand view.
type ProductDemand struct {
	ProductID     int     `json:"product_id"`
	ProductName   string  `json:"product_name"`
	Category      string  `json:"category"`
	TotalQuantity int     `json:"total_quantity"`
	TotalRevenue  float64 `json:"total_revenue"`
	DemandScore   float64 `json:"demand_score"`
}

// CategoryDemand aggregates demand per product category.
type CategoryDemand struct {
	Category      string  `json:"category"`
	TotalQuantity int     `json:"total_quantity"`
	TotalRevenue  float64 `json:"total_revenue"`
}

// DemandForecast ranks products and categories by quantity sold.
type DemandForecast struct {
	TopProducts    []ProductDemand  `json:"top_products_demand"`
	CategoryDemand []CategoryDemand `json:"category_demand"`
}

// ModelInfo describes one trained model.
type ModelInfo struct {
	ModelType      string `json:"model_type"`
	FeaturesUsed   int    `json:"features_used"`
	TrainingStatus string `json:"training_status"`
}

// ModelPerformance holds metadata for the models trained in this run.
// A nil entry means the model was not trained.
type ModelPerformance struct {
	ChurnModel *ModelInfo `json:"churn_model,omitempty"`
	CLVModel   *ModelInfo `json:"clv_model,omitempty"`
}

// RiskBucket is one segment of the churn-probability risk partition.
type RiskBucket struct {
	Label         string  `json:"label"`
	CustomerCount int     `json:"customer_count"`
	TotalValue    float64 `json:"total_value"`
	AvgValue      float64 `json:"avg_value"`
	AvgChurnProb  float64 `json:"avg_churn_prob"`
}

// HighValueAtRisk flags customers that are both likely to churn and in
// the top spend quartile.
type HighValueAtRisk struct {
	Count               int     `json:"count"`
	TotalValue          float64 `json:"total_value"`
	AvgChurnProbability float64 `json:"avg_churn_probability"`
}

// RiskReport is the combined churn/value risk segmentation. A non-empty
// Message means churn probabilities were unavailable.
type RiskReport struct {
	Message         string          `json:"message,omitempty"`
	Segments        []RiskBucket    `json:"risk_segmentation,omitempty"`
	HighValueAtRisk HighValueAtRisk `json:"high_value_at_risk"`
}

// HistogramSeries is a chart-ready histogram.
type HistogramSeries struct {
	X     []float64 `json:"x"`
	Y     []int     `json:"y"`
	Type  string    `json:"type"`
	Title string    `json:"title"`
}

// LineSeries is a chart-ready line plot.
type LineSeries struct {
	X     []int     `json:"x"`
	Y     []float64 `json:"y"`
	Type  string    `json:"type"`
	Title string    `json:"title"`
}

// Charts bundles the series handed to the presentation layer.
type Charts struct {
	ChurnDistribution *HistogramSeries `json:"churn_distribution,omitempty"`
	SalesForecast     *LineSeries      `json:"sales_forecast"`
}

// PriorPredSummary summarizes the optional prior-model predictions table.
type PriorPredSummary struct {
	Count                    int     `json:"count"`
	AvgPriorChurnProbability float64 `json:"avg_prior_churn_probability"`
	AvgPriorPredictedValue   float64 `json:"avg_prior_predicted_value"`
}
