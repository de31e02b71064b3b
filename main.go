package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/delivro/dhlexpress/pkg/dhl"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "dhlexpress",
	Short:         "Delivro DHL Express client - address validation, shipments, tracking, proof of delivery",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

var (
	addrType   string
	addrStrict bool
)

var validateAddressCmd = &cobra.Command{
	Use:   "validate-address <country-code>",
	Short: "Validate an address against the DHL Express API",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidateAddress,
}

var shipmentPayloadFile string

var createShipmentCmd = &cobra.Command{
	Use:   "create-shipment",
	Short: "Create a shipment from a JSON payload file",
	RunE:  runCreateShipment,
}

var withProof bool

var trackCmd = &cobra.Command{
	Use:   "track <shipment-id>",
	Short: "Fetch the current status of a shipment",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrack,
}

var proofCmd = &cobra.Command{
	Use:   "proof <shipment-id>",
	Short: "Fetch the proof-of-delivery documents of a shipment",
	Args:  cobra.ExactArgs(1),
	RunE:  runProof,
}

func init() {
	validateAddressCmd.Flags().StringVar(&addrType, "type", "delivery", "address type: delivery or pickup")
	validateAddressCmd.Flags().BoolVar(&addrStrict, "strict", false, "enable strict validation")
	validateAddressCmd.Flags().String("postal-code", "", "postal code")
	validateAddressCmd.Flags().String("city", "", "city name")
	validateAddressCmd.Flags().String("county", "", "county name")

	createShipmentCmd.Flags().StringVarP(&shipmentPayloadFile, "payload", "p", "", "path to a JSON shipment payload (required)")
	createShipmentCmd.MarkFlagRequired("payload")

	trackCmd.Flags().BoolVar(&withProof, "with-proof", false, "also fetch proof of delivery")

	rootCmd.AddCommand(validateAddressCmd)
	rootCmd.AddCommand(createShipmentCmd)
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(proofCmd)
}

func runValidateAddress(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	env, err := setup(ctx)
	if err != nil {
		return err
	}
	defer env.close(ctx)

	req := &dhl.AddressValidationRequest{
		Type:             dhl.AddressType(addrType),
		CountryCode:      args[0],
		StrictValidation: addrStrict,
	}
	req.PostalCode, _ = cmd.Flags().GetString("postal-code")
	req.CityName, _ = cmd.Flags().GetString("city")
	req.CountyName, _ = cmd.Flags().GetString("county")

	var result *dhl.AddressValidationResult
	err = env.instrument("address-validate", func() error {
		var opErr error
		result, opErr = env.client.ValidateAddress(ctx, req)
		return opErr
	})
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runCreateShipment(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	env, err := setup(ctx)
	if err != nil {
		return err
	}
	defer env.close(ctx)

	payload, err := os.ReadFile(shipmentPayloadFile)
	if err != nil {
		return fmt.Errorf("reading payload: %w", err)
	}

	var req dhl.ShipmentRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("parsing payload: %w", err)
	}

	var result *dhl.ShipmentResult
	err = env.instrument("shipment-create", func() error {
		var opErr error
		result, opErr = env.client.CreateShipment(ctx, &req)
		return opErr
	})
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runTrack(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	shipmentID := args[0]

	env, err := setup(ctx)
	if err != nil {
		return err
	}
	defer env.close(ctx)

	if !withProof {
		var status *dhl.TrackingInfo
		err = env.instrument("shipment-tracking", func() error {
			var opErr error
			status, opErr = env.client.GetShipmentStatus(ctx, shipmentID)
			return opErr
		})
		if err != nil {
			return err
		}
		return printJSON(status)
	}

	// Status and proof are independent lookups; fetch them concurrently.
	var (
		status *dhl.TrackingInfo
		proof  *dhl.ProofOfDelivery
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return env.instrument("shipment-tracking", func() error {
			var opErr error
			status, opErr = env.client.GetShipmentStatus(gctx, shipmentID)
			return opErr
		})
	})
	g.Go(func() error {
		return env.instrument("shipment-proof", func() error {
			var opErr error
			proof, opErr = env.client.GetShipmentProof(gctx, shipmentID)
			return opErr
		})
	})
	if err := g.Wait(); err != nil {
		return err
	}

	return printJSON(map[string]any{
		"status": status,
		"proof":  proof,
	})
}

func runProof(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	env, err := setup(ctx)
	if err != nil {
		return err
	}
	defer env.close(ctx)

	var proof *dhl.ProofOfDelivery
	err = env.instrument("shipment-proof", func() error {
		var opErr error
		proof, opErr = env.client.GetShipmentProof(ctx, args[0])
		return opErr
	})
	if err != nil {
		return err
	}
	return printJSON(proof)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// instrument runs an operation and records request metrics around it.
func (e *env) instrument(operation string, f func() error) error {
	start := time.Now()
	err := f()

	status := "success"
	if err != nil {
		status = "error"
		e.metrics.RecordError(operation, errorKind(err))
	}
	e.metrics.RecordRequest(operation, status, time.Since(start).Seconds())
	return err
}
