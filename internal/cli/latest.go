package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/s-boardman/enviroplus-datalogger/internal/database"
)

// latestCmd represents the latest command
var latestCmd = &cobra.Command{
	Use:     "latest",
	Aliases: []string{"l"},
	Short:   "Print the most recent measurement",
	Long: `Print the most recently logged measurement as JSON.

Particulate matter fields are null when the particulate sensor timed out
during that run.`,
	RunE: runLatest,
}

func runLatest(cmd *cobra.Command, args []string) error {
	logger.Debug("Fetching latest measurement", "db_file", cfg.DBFile)

	store := database.NewStore(cfg.DBFile, logger)
	if err := store.EnsureSchema(); err != nil {
		return err
	}

	m, err := store.Latest()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("no measurements logged in %s yet", cfg.DBFile)
		}
		return err
	}

	response := MeasurementInfo{
		Timestamp:      m.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		Temperature:    m.Temperature,
		Pressure:       m.Pressure,
		Humidity:       m.Humidity,
		LightLux:       m.LightLux,
		LightProximity: m.LightProximity,
		PM1Standard:    m.PM1Standard,
		PM25Standard:   m.PM25Standard,
		PM10Standard:   m.PM10Standard,
		PM1Env:         m.PM1Env,
		PM25Env:        m.PM25Env,
		PM10Env:        m.PM10Env,
		Oxidising:      m.Oxidising,
		Reducing:       m.Reducing,
		NH3:            m.NH3,
	}

	output, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format measurement: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(output))
	return nil
}

// MeasurementInfo represents measurement information for JSON output
type MeasurementInfo struct {
	Timestamp      string   `json:"timestamp"`
	Temperature    float64  `json:"temperature"`
	Pressure       float64  `json:"pressure"`
	Humidity       float64  `json:"humidity"`
	LightLux       float64  `json:"light_lux"`
	LightProximity float64  `json:"light_proximity"`
	PM1Standard    *float64 `json:"pm1_0_standard"`
	PM25Standard   *float64 `json:"pm2_5_standard"`
	PM10Standard   *float64 `json:"pm10_standard"`
	PM1Env         *float64 `json:"pm1_0_env"`
	PM25Env        *float64 `json:"pm2_5_env"`
	PM10Env        *float64 `json:"pm10_env"`
	Oxidising      float64  `json:"oxidising"`
	Reducing       float64  `json:"reducing"`
	NH3            float64  `json:"nh3"`
}

func init() {
	// Add latest command to root
	rootCmd.AddCommand(latestCmd)
}
