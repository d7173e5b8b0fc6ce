package e2e

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cucumber/godog"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Background steps
	ctx.Step(`^the credential service is running$`, tc.serviceIsRunning)

	// Registry steps
	ctx.Step(`^the owner authorizes institution "([^"]*)"$`, tc.ownerAuthorizesInstitution)
	ctx.Step(`^the owner revokes institution "([^"]*)"$`, tc.ownerRevokesInstitution)
	ctx.Step(`^someone with a bad owner token authorizes institution "([^"]*)"$`, tc.badTokenAuthorizesInstitution)
	ctx.Step(`^I look up institution "([^"]*)"$`, tc.lookUpInstitution)
	ctx.Step(`^I list the registry$`, tc.listRegistry)

	// Credential steps
	ctx.Step(`^"([^"]*)" issues a "([^"]*)" credential to "([^"]*)"$`, tc.issuePublicCredential)
	ctx.Step(`^"([^"]*)" issues a hybrid credential to "([^"]*)"$`, tc.issueHybridCredential)
	ctx.Step(`^"([^"]*)" revokes the credential$`, tc.revokeCredential)
	ctx.Step(`^"([^"]*)" attempts to transfer the credential to "([^"]*)"$`, tc.attemptTransfer)
	ctx.Step(`^"([^"]*)" attempts to approve "([^"]*)" as spender$`, tc.attemptApprove)
	ctx.Step(`^I verify the credential$`, tc.verifyCredential)
	ctx.Step(`^I fetch the credential$`, tc.fetchCredential)
	ctx.Step(`^I get the total supply$`, tc.getTotalSupply)

	// Access steps
	ctx.Step(`^"([^"]*)" grants "([^"]*)" access for (\d+) seconds$`, tc.grantAccessFor)
	ctx.Step(`^"([^"]*)" grants "([^"]*)" permanent access$`, tc.grantPermanentAccess)
	ctx.Step(`^"([^"]*)" revokes "([^"]*)"'s access$`, tc.revokeAccess)
	ctx.Step(`^I check "([^"]*)"'s access$`, tc.checkAccess)
	ctx.Step(`^"([^"]*)" requests the access list$`, tc.requestAccessList)
	ctx.Step(`^"([^"]*)" reads the private data$`, tc.readPrivateData)

	// Event steps
	ctx.Step(`^I list the events$`, tc.listEvents)
	ctx.Step(`^I list the events for the credential$`, tc.listEventsForCredential)

	// Assertion steps
	ctx.Step(`^the response status should be (\d+)$`, tc.responseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, tc.responseShouldContain)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, tc.responseFieldShouldEqual)
}

func (tc *TestContext) serviceIsRunning(ctx context.Context) error {
	return tc.GET("/healthz", nil)
}

func (tc *TestContext) ownerAuthorizesInstitution(ctx context.Context, name string) error {
	return tc.POST("/registry/"+tc.Identity(name).String()+"/authorize", map[string]interface{}{}, tc.OwnerHeaders())
}

func (tc *TestContext) ownerRevokesInstitution(ctx context.Context, name string) error {
	return tc.POST("/registry/"+tc.Identity(name).String()+"/revoke", map[string]interface{}{}, tc.OwnerHeaders())
}

func (tc *TestContext) badTokenAuthorizesInstitution(ctx context.Context, name string) error {
	headers := map[string]string{"X-Owner-Token": "not-the-owner-token"}
	return tc.POST("/registry/"+tc.Identity(name).String()+"/authorize", map[string]interface{}{}, headers)
}

func (tc *TestContext) lookUpInstitution(ctx context.Context, name string) error {
	return tc.GET("/registry/"+tc.Identity(name).String(), nil)
}

func (tc *TestContext) listRegistry(ctx context.Context) error {
	return tc.GET("/registry", nil)
}

func (tc *TestContext) issuePublicCredential(ctx context.Context, issuer, credentialType, recipient string) error {
	headers, err := tc.CallerHeaders(issuer)
	if err != nil {
		return err
	}
	body := map[string]interface{}{
		"recipient":        tc.Identity(recipient).String(),
		"credential_type":  credentialType,
		"achievement_name": "Achievement for " + recipient,
	}
	if err := tc.POST("/credentials", body, headers); err != nil {
		return err
	}
	tc.SaveCredentialID()
	return nil
}

func (tc *TestContext) issueHybridCredential(ctx context.Context, issuer, recipient string) error {
	headers, err := tc.CallerHeaders(issuer)
	if err != nil {
		return err
	}
	body := map[string]interface{}{
		"recipient":        tc.Identity(recipient).String(),
		"credential_type":  "degree",
		"achievement_name": "Achievement for " + recipient,
		"student_id":       []byte("encrypted-student-id"),
		"grade":            []byte("encrypted-grade"),
		"personal_data":    []byte("encrypted-personal-data"),
	}
	if err := tc.POST("/credentials/hybrid", body, headers); err != nil {
		return err
	}
	tc.SaveCredentialID()
	return nil
}

func (tc *TestContext) revokeCredential(ctx context.Context, caller string) error {
	headers, err := tc.CallerHeaders(caller)
	if err != nil {
		return err
	}
	return tc.POST("/credentials/"+tc.LastCredentialID+"/revoke", map[string]interface{}{}, headers)
}

func (tc *TestContext) attemptTransfer(ctx context.Context, caller, to string) error {
	headers, err := tc.CallerHeaders(caller)
	if err != nil {
		return err
	}
	body := map[string]interface{}{"to": tc.Identity(to).String()}
	return tc.POST("/credentials/"+tc.LastCredentialID+"/transfer", body, headers)
}

func (tc *TestContext) attemptApprove(ctx context.Context, caller, spender string) error {
	headers, err := tc.CallerHeaders(caller)
	if err != nil {
		return err
	}
	body := map[string]interface{}{"spender": tc.Identity(spender).String()}
	return tc.POST("/credentials/"+tc.LastCredentialID+"/approve", body, headers)
}

func (tc *TestContext) verifyCredential(ctx context.Context) error {
	return tc.GET("/credentials/"+tc.LastCredentialID+"/verify", nil)
}

func (tc *TestContext) fetchCredential(ctx context.Context) error {
	return tc.GET("/credentials/"+tc.LastCredentialID, nil)
}

func (tc *TestContext) getTotalSupply(ctx context.Context) error {
	return tc.GET("/supply", nil)
}

func (tc *TestContext) grantAccessFor(ctx context.Context, caller, viewer string, seconds int) error {
	headers, err := tc.CallerHeaders(caller)
	if err != nil {
		return err
	}
	body := map[string]interface{}{"duration_seconds": seconds}
	path := "/credentials/" + tc.LastCredentialID + "/access/" + tc.Identity(viewer).String() + "/grant"
	return tc.POST(path, body, headers)
}

func (tc *TestContext) grantPermanentAccess(ctx context.Context, caller, viewer string) error {
	return tc.grantAccessFor(ctx, caller, viewer, 0)
}

func (tc *TestContext) revokeAccess(ctx context.Context, caller, viewer string) error {
	headers, err := tc.CallerHeaders(caller)
	if err != nil {
		return err
	}
	path := "/credentials/" + tc.LastCredentialID + "/access/" + tc.Identity(viewer).String() + "/revoke"
	return tc.POST(path, map[string]interface{}{}, headers)
}

func (tc *TestContext) checkAccess(ctx context.Context, viewer string) error {
	return tc.GET("/credentials/"+tc.LastCredentialID+"/access/"+tc.Identity(viewer).String(), nil)
}

func (tc *TestContext) requestAccessList(ctx context.Context, caller string) error {
	headers, err := tc.CallerHeaders(caller)
	if err != nil {
		return err
	}
	return tc.GET("/credentials/"+tc.LastCredentialID+"/access", headers)
}

func (tc *TestContext) readPrivateData(ctx context.Context, caller string) error {
	headers, err := tc.CallerHeaders(caller)
	if err != nil {
		return err
	}
	return tc.GET("/credentials/"+tc.LastCredentialID+"/private", headers)
}

func (tc *TestContext) listEvents(ctx context.Context) error {
	return tc.GET("/events", nil)
}

func (tc *TestContext) listEventsForCredential(ctx context.Context) error {
	return tc.GET("/events?credential_id="+tc.LastCredentialID, nil)
}

func (tc *TestContext) responseStatusShouldBe(ctx context.Context, expectedStatus int) error {
	if tc.LastResponse.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d but got %d\nResponse: %s", expectedStatus, tc.LastResponse.StatusCode, string(tc.LastResponseBody))
	}
	return nil
}

func (tc *TestContext) responseShouldContain(ctx context.Context, field string) error {
	if !tc.ResponseContains(field) {
		return fmt.Errorf("response does not contain: %s\nResponse: %s", field, string(tc.LastResponseBody))
	}
	return nil
}

func (tc *TestContext) responseFieldShouldEqual(ctx context.Context, field, expectedValue string) error {
	var data map[string]interface{}
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	actualValue, ok := data[field]
	if !ok {
		return fmt.Errorf("field %s not found in response\nResponse: %s", field, string(tc.LastResponseBody))
	}

	var actual string
	switch v := actualValue.(type) {
	case float64:
		actual = fmt.Sprintf("%.0f", v)
	default:
		actual = fmt.Sprint(v)
	}
	if actual != expectedValue {
		return fmt.Errorf("field %s: expected %s but got %s", field, expectedValue, actual)
	}
	return nil
}
