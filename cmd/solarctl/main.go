package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/cloud"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/config"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/database"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/pricing"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/service"
)

var rootCmd = &cobra.Command{
	Use:          "solarctl",
	Short:        "Operator tooling for the solar partner portal",
	SilenceUsage: true,
}

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Size a system from a monthly bill and roof area",
	RunE:  runEstimate,
}

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price a partner quotation",
	RunE:  runQuote,
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print locations, system types and brands as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(pricing.DefaultCatalog())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load("DB_DSN"); err != nil {
			return err
		}
		db, err := database.Connect(config.DatabaseDSN())
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info().Msg("schema up to date")
		return nil
	},
}

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List the most recent quote requests",
	RunE:  runLeads,
}

var cloudInitCmd = &cobra.Command{
	Use:   "cloud-init",
	Short: "Create the DynamoDB quotations table and S3 document bucket",
	Long: `Create the AWS resources the API uses when QUOTATION_STORE=dynamodb or
USE_CLOUD_SERVICES=true. Existing resources are left untouched, so the
command is safe to re-run. Set DYNAMODB_ENDPOINT to target DynamoDB Local.`,
	RunE: runCloudInit,
}

var (
	estimateParams = pricing.DefaultParams()
	quoteInput     = pricing.DefaultQuoteInput()
	leadsLimit     int
	skipBucket     bool
)

func init() {
	f := estimateCmd.Flags()
	f.Float64Var(&estimateParams.MonthlyBill, "bill", estimateParams.MonthlyBill, "average monthly electricity bill")
	f.Float64Var(&estimateParams.RoofArea, "roof", estimateParams.RoofArea, "usable roof area in sq ft")
	f.StringVar(&estimateParams.Location, "location", estimateParams.Location, "location key")
	f.StringVar(&estimateParams.SystemType, "system-type", estimateParams.SystemType, "grid-tie, off-grid or hybrid")

	f = quoteCmd.Flags()
	f.IntVar(&quoteInput.SystemSize, "size", quoteInput.SystemSize, "system size in kW")
	f.StringVar(&quoteInput.PanelBrand, "panel", quoteInput.PanelBrand, "panel brand key")
	f.StringVar(&quoteInput.InverterBrand, "inverter", quoteInput.InverterBrand, "inverter brand key")
	f.StringVar(&quoteInput.WiringBrand, "wiring", quoteInput.WiringBrand, "wiring brand key")

	leadsCmd.Flags().IntVarP(&leadsLimit, "limit", "n", 20, "number of quote requests to show")

	cloudInitCmd.Flags().BoolVar(&skipBucket, "skip-bucket", false, "only provision the DynamoDB table")

	rootCmd.AddCommand(estimateCmd, quoteCmd, catalogCmd, migrateCmd, leadsCmd, cloudInitCmd)
}

func runEstimate(cmd *cobra.Command, args []string) error {
	if err := estimateParams.Validate(); err != nil {
		return err
	}
	r, err := pricing.Estimate(estimateParams)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "System size\t%.0f kW\n", r.SystemSizeKW)
	fmt.Fprintf(w, "Total cost\t%s\n", pricing.FormatINR(r.TotalCost))
	fmt.Fprintf(w, "Monthly savings\t%s\n", pricing.FormatINR(r.MonthlySavings))
	fmt.Fprintf(w, "Yearly savings\t%s\n", pricing.FormatINR(r.YearlySavings))
	fmt.Fprintf(w, "Payback\t%s\n", r.Payback())
	fmt.Fprintf(w, "Carbon offset\t%.1f t/yr\n", r.CarbonOffsetTons)
	return w.Flush()
}

func runQuote(cmd *cobra.Command, args []string) error {
	b, err := pricing.QuoteCost(quoteInput)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Panels (%d kW)\t%s\n", b.SystemSize, pricing.FormatINR(b.PanelCost))
	fmt.Fprintf(w, "Inverters (%d)\t%s\n", b.Inverters, pricing.FormatINR(b.InverterCost))
	fmt.Fprintf(w, "Wiring\t%s\n", pricing.FormatINR(b.WiringCost))
	fmt.Fprintf(w, "Installation\t%s\n", pricing.FormatINR(b.InstallationCost))
	fmt.Fprintf(w, "Other\t%s\n", pricing.FormatINR(b.OtherCost))
	fmt.Fprintf(w, "Total\t%s\n", pricing.FormatINR(b.TotalCost))
	return w.Flush()
}

func runLeads(cmd *cobra.Command, args []string) error {
	if err := config.Load(config.Backend...); err != nil {
		return err
	}
	db, err := database.Connect(config.DatabaseDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	svcs := service.New(db, config.AuthKey())
	leads, err := svcs.Leads.Recent(cmd.Context(), leadsLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RECEIVED\tNAME\tEMAIL\tLOCATION\tBILL\tSOURCE")
	for _, l := range leads {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			l.CreatedAt.Local().Format("2006-01-02 15:04"), l.Name, l.Email, l.Location,
			pricing.FormatINR(l.MonthlyBill), l.Source)
	}
	return w.Flush()
}

func runCloudInit(cmd *cobra.Command, args []string) error {
	if err := config.Load(); err != nil {
		return err
	}
	ctx := cmd.Context()

	awsCfg, err := cloud.LoadConfig(ctx, config.AWSRegion(), config.DynamoDBEndpoint())
	if err != nil {
		return err
	}

	ddb := cloud.NewDynamoDBClient(awsCfg, config.DynamoDBEndpoint())
	created, err := cloud.EnsureQuotationsTable(ctx, ddb, config.QuotationsTable(), 2*time.Minute)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "table %s: %s\n", config.QuotationsTable(), outcome(created))

	if skipBucket {
		return nil
	}
	created, err = cloud.EnsureBucket(ctx, cloud.NewS3Client(awsCfg), config.S3Bucket(), config.AWSRegion())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "bucket %s: %s\n", config.S3Bucket(), outcome(created))
	return nil
}

func outcome(created bool) string {
	if created {
		return "created"
	}
	return "exists"
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
