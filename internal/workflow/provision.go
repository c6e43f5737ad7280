package workflow

import (
	"errors"
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/tarek/provision/internal/activity"
	"github.com/tarek/provision/internal/model"
	"github.com/tarek/provision/internal/platform"
	"github.com/tarek/provision/internal/provider"
)

const (
	defaultImage    = "ubuntu-24.04"
	defaultLocation = "nbg1"
)

// ProvisionRequestWorkflow drives an approved server request through
// machine creation, DNS setup and completion. Any failure before the
// deployed state marks the request failed with the underlying error
// recorded verbatim; DNS trouble alone never fails a request that has a
// running server.
func ProvisionRequestWorkflow(ctx workflow.Context, requestID string) error {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	err := workflow.ExecuteActivity(ctx, "SetRequestStatus", activity.SetRequestStatusParams{
		ID:     requestID,
		Status: model.RequestStatusDeploying,
	}).Get(ctx, nil)
	if err != nil {
		return err
	}

	var req model.ServerRequest
	if err := workflow.ExecuteActivity(ctx, "GetServerRequest", requestID).Get(ctx, &req); err != nil {
		return failProvision(ctx, &model.ServerRequest{ID: requestID}, err)
	}

	// Without a project there are no credentials to provision under.
	if req.ProjectID == nil {
		return failProvision(ctx, &req, errors.New("no project specified"))
	}

	if err := workflow.ExecuteActivity(ctx, "SetRequestProgress", activity.SetRequestProgressParams{
		ID:       requestID,
		Progress: 10,
	}).Get(ctx, nil); err != nil {
		return failProvision(ctx, &req, err)
	}

	labels := map[string]string{
		"managed_by":          "provision",
		provider.ProjectLabel: *req.ProjectID,
	}

	// Machine creation gets its own generous deadline; the provider can
	// take minutes before the server reports ready.
	createCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 2,
		},
	})

	var info provider.ServerInfo
	err = workflow.ExecuteActivity(createCtx, "CreateServer", activity.CreateServerParams{
		ProjectID:  req.ProjectID,
		Name:       req.ServerName,
		ServerType: req.ServerType,
		Image:      defaultImage,
		Location:   defaultLocation,
		Labels:     labels,
	}).Get(ctx, &info)
	if err != nil {
		return failProvision(ctx, &req, err)
	}

	var serverID string
	err = workflow.ExecuteActivity(ctx, "InsertServer", activity.InsertServerParams{
		ProviderID: info.ID,
		ProjectID:  req.ProjectID,
		Name:       info.Name,
		Status:     info.Status,
		ServerType: info.ServerType,
		Image:      info.Image,
		PublicIP:   info.PublicIP,
		PrivateIP:  info.PrivateIP,
		IPv6:       info.IPv6,
		ReverseDNS: info.ReverseDNS,
		Datacenter: info.Datacenter,
		Location:   info.Location,
		CPUCores:   info.Cores,
		MemoryGB:   info.MemoryGB,
		DiskGB:     info.DiskGB,
	}).Get(ctx, &serverID)
	if err != nil {
		return failProvision(ctx, &req, err)
	}

	if info.PublicIP != nil {
		if err := workflow.ExecuteActivity(ctx, "SetRequestServerIP", activity.SetRequestServerIPParams{
			ID: requestID,
			IP: *info.PublicIP,
		}).Get(ctx, nil); err != nil {
			return failProvision(ctx, &req, err)
		}
	}

	if err := workflow.ExecuteActivity(ctx, "SetRequestProgress", activity.SetRequestProgressParams{
		ID:       requestID,
		Progress: 60,
	}).Get(ctx, nil); err != nil {
		return failProvision(ctx, &req, err)
	}

	notes := fmt.Sprintf("server %s provisioned", info.Name)
	if fqdn, dnsErr := configureDNS(ctx, &req, info.PublicIP); dnsErr != nil {
		notes += fmt.Sprintf("; DNS record creation failed: %v", dnsErr)
	} else if fqdn != "" {
		notes += fmt.Sprintf("; reachable at %s", fqdn)
	}

	if err := workflow.ExecuteActivity(ctx, "SetRequestDeployed", activity.SetRequestDeployedParams{
		ID:    requestID,
		Notes: notes,
	}).Get(ctx, nil); err != nil {
		return err
	}

	return workflow.ExecuteActivity(ctx, "InsertNotification", activity.InsertNotificationParams{
		UserID:    req.RequesterID,
		Title:     "Server deployed",
		Message:   fmt.Sprintf("Your server %s is ready. %s", req.ServerName, notes),
		Severity:  model.SeveritySuccess,
		RequestID: &requestID,
	}).Get(ctx, nil)
}

// configureDNS creates the A record for the request when the project has a
// base domain. Returns the FQDN it configured, empty when DNS is not
// applicable.
func configureDNS(ctx workflow.Context, req *model.ServerRequest, publicIP *string) (string, error) {
	if req.ProjectID == nil || req.Subdomain == "" || publicIP == nil {
		return "", nil
	}

	var baseDomain string
	if err := workflow.ExecuteActivity(ctx, "GetProjectBaseDomain", *req.ProjectID).Get(ctx, &baseDomain); err != nil {
		return "", err
	}
	if baseDomain == "" {
		return "", nil
	}

	if err := workflow.ExecuteActivity(ctx, "UpsertRecord", activity.UpsertRecordParams{
		Domain:    baseDomain,
		Subdomain: req.Subdomain,
		IP:        *publicIP,
	}).Get(ctx, nil); err != nil {
		return "", err
	}
	return platform.FullDomain(req.Subdomain, baseDomain), nil
}

// failProvision marks the request failed, recording the pipeline error
// verbatim, and notifies the requester. The original error is returned so
// the workflow itself reports as failed too.
func failProvision(ctx workflow.Context, req *model.ServerRequest, err error) error {
	_ = workflow.ExecuteActivity(ctx, "SetRequestFailed", activity.SetRequestFailedParams{
		ID:      req.ID,
		Message: err.Error(),
	}).Get(ctx, nil)

	if req.RequesterID != "" {
		_ = workflow.ExecuteActivity(ctx, "InsertNotification", activity.InsertNotificationParams{
			UserID:    req.RequesterID,
			Title:     "Server deployment failed",
			Message:   fmt.Sprintf("Provisioning of %s failed: %v", req.ServerName, err),
			Severity:  model.SeverityDanger,
			RequestID: &req.ID,
		}).Get(ctx, nil)
	}
	return err
}
