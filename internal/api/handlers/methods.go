package handlers

import (
	"net/http"

	"portfolio-doctor/internal/api/models"
	"portfolio-doctor/internal/config"
	"portfolio-doctor/internal/model"

	"github.com/gin-gonic/gin"
)

// ListWithdrawalMethods handles GET /api/v1/withdrawal-methods
func ListWithdrawalMethods(c *gin.Context) {
	d := config.Defaults().Withdrawal
	startYear := models.ParameterInfo{
		Name:        "start_year",
		Type:        "int",
		Description: "First cycle year (1-based) with a withdrawal; earlier years withdraw nothing",
		Default:     1,
	}
	methods := []models.WithdrawalMethodInfo{
		{
			ID:          int(model.Nominal),
			Name:        model.Nominal.String(),
			Description: "Withdraw the same nominal amount every year. Its purchasing power falls with inflation.",
			Parameters: []models.ParameterInfo{
				{Name: "static_amount", Type: "float", Description: "Annual withdrawal in nominal dollars", Default: d.StaticAmount},
				startYear,
			},
		},
		{
			ID:          int(model.InflationAdjusted),
			Name:        model.InflationAdjusted.String(),
			Description: "Withdraw a fixed amount in start-of-retirement dollars, grown with cumulative inflation.",
			Parameters: []models.ParameterInfo{
				{Name: "static_amount", Type: "float", Description: "Annual withdrawal in start-of-retirement dollars", Default: d.StaticAmount},
				startYear,
			},
		},
		{
			ID:          int(model.PercentPortfolio),
			Name:        model.PercentPortfolio.String(),
			Description: "Withdraw a fixed fraction of the balance at the start of each year.",
			Parameters: []models.ParameterInfo{
				{Name: "percentage", Type: "float", Description: "Fraction of the starting balance, e.g. 0.04", Default: d.Percentage},
				startYear,
			},
		},
		{
			ID:          int(model.PercentPortfolioClamped),
			Name:        model.PercentPortfolioClamped.String(),
			Description: "Withdraw a fraction of the balance, kept between a nominal floor and ceiling.",
			Parameters: []models.ParameterInfo{
				{Name: "percentage", Type: "float", Description: "Fraction of the starting balance, e.g. 0.04", Default: d.Percentage},
				{Name: "floor", Type: "float", Description: "Minimum annual withdrawal in nominal dollars", Default: d.Floor},
				{Name: "ceiling", Type: "float", Description: "Maximum annual withdrawal in nominal dollars", Default: d.Ceiling},
				startYear,
			},
		},
	}
	c.JSON(http.StatusOK, gin.H{"withdrawal_methods": methods})
}
