package e2e

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
)

// RegisterSteps registers all step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	ctx.Step(`^the loan API is running$`, tc.loanAPIIsRunning)

	ctx.Step(`^I register as a new customer born in (\d+)$`, tc.registerCustomer)
	ctx.Step(`^I register again with the same email$`, tc.registerSameEmail)
	ctx.Step(`^I request an access token with my credentials$`, tc.requestToken)
	ctx.Step(`^I request an access token with password "([^"]*)"$`, tc.requestTokenWithPassword)
	ctx.Step(`^I have an admin token$`, tc.haveAdminToken)

	ctx.Step(`^I submit a loan of "([^"]*)" for "([^"]*)"$`, tc.submitLoan)
	ctx.Step(`^I submit a loan of "([^"]*)" for "([^"]*)" without a token$`, tc.submitLoanAnonymously)
	ctx.Step(`^I save the application id$`, tc.saveApplicationID)
	ctx.Step(`^I list my loan applications$`, tc.listOwnLoans)

	ctx.Step(`^the admin approves the application$`, tc.adminApprove)
	ctx.Step(`^the admin rejects the application$`, tc.adminReject)
	ctx.Step(`^the admin flags the application with reason "([^"]*)"$`, tc.adminFlag)
	ctx.Step(`^the admin runs a fraud check on the application$`, tc.adminFraudCheck)
	ctx.Step(`^the admin lists flagged applications$`, tc.adminListFlagged)
	ctx.Step(`^the admin fetches the application detail$`, tc.adminGetDetail)

	ctx.Step(`^the response status should be (\d+)$`, tc.responseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, tc.responseShouldContain)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, tc.responseFieldShouldEqual)
}

func (tc *TestContext) loanAPIIsRunning(ctx context.Context) error {
	if err := tc.GET("/healthz", ""); err != nil {
		return err
	}
	if tc.LastResponse.StatusCode != 200 {
		return fmt.Errorf("health check returned %d", tc.LastResponse.StatusCode)
	}
	return nil
}

func (tc *TestContext) registerCustomer(ctx context.Context, birthYear int) error {
	return tc.POST("/api/v1/customers", map[string]interface{}{
		"first_name":    "E2E",
		"last_name":     "Customer",
		"email":         tc.CustomerEmail,
		"phone_number":  "+15550100",
		"date_of_birth": fmt.Sprintf("%04d-06-15", birthYear),
		"password":      tc.CustomerPassword,
	}, "")
}

func (tc *TestContext) registerSameEmail(ctx context.Context) error {
	return tc.registerCustomer(ctx, 1990)
}

func (tc *TestContext) requestToken(ctx context.Context) error {
	return tc.requestTokenWithPassword(ctx, tc.CustomerPassword)
}

func (tc *TestContext) requestTokenWithPassword(ctx context.Context, password string) error {
	if err := tc.POST("/api/v1/auth/token", map[string]interface{}{
		"email":    tc.CustomerEmail,
		"password": password,
	}, ""); err != nil {
		return err
	}
	if tc.LastResponse.StatusCode == 200 {
		tok, err := tc.GetResponseField("access_token")
		if err != nil {
			return err
		}
		tc.AccessToken = tok.(string)
	}
	return nil
}

func (tc *TestContext) haveAdminToken(ctx context.Context) error {
	return tc.MintAdminToken()
}

func (tc *TestContext) submitLoan(ctx context.Context, amount, purpose string) error {
	return tc.POST("/api/v1/loans", map[string]interface{}{
		"amount":  amount,
		"purpose": purpose,
	}, tc.AccessToken)
}

func (tc *TestContext) submitLoanAnonymously(ctx context.Context, amount, purpose string) error {
	return tc.POST("/api/v1/loans", map[string]interface{}{
		"amount":  amount,
		"purpose": purpose,
	}, "")
}

func (tc *TestContext) saveApplicationID(ctx context.Context) error {
	appID, err := tc.GetResponseField("id")
	if err != nil {
		return err
	}
	tc.ApplicationID = appID.(string)
	return nil
}

func (tc *TestContext) listOwnLoans(ctx context.Context) error {
	return tc.GET("/api/v1/loans", tc.AccessToken)
}

func (tc *TestContext) adminApprove(ctx context.Context) error {
	return tc.POST("/api/v1/admin/loans/"+tc.ApplicationID+"/approve", nil, tc.AdminToken)
}

func (tc *TestContext) adminReject(ctx context.Context) error {
	return tc.POST("/api/v1/admin/loans/"+tc.ApplicationID+"/reject", nil, tc.AdminToken)
}

func (tc *TestContext) adminFlag(ctx context.Context, reason string) error {
	return tc.POST("/api/v1/admin/loans/"+tc.ApplicationID+"/flag", map[string]interface{}{
		"flags": []map[string]string{{"reason": reason, "comments": "e2e manual flag"}},
	}, tc.AdminToken)
}

func (tc *TestContext) adminFraudCheck(ctx context.Context) error {
	return tc.POST("/api/v1/admin/loans/"+tc.ApplicationID+"/fraud-check", nil, tc.AdminToken)
}

func (tc *TestContext) adminListFlagged(ctx context.Context) error {
	return tc.GET("/api/v1/admin/loans/flagged", tc.AdminToken)
}

func (tc *TestContext) adminGetDetail(ctx context.Context) error {
	return tc.GET("/api/v1/admin/loans/"+tc.ApplicationID, tc.AdminToken)
}

func (tc *TestContext) responseStatusShouldBe(ctx context.Context, status int) error {
	if tc.LastResponse == nil {
		return fmt.Errorf("no response recorded")
	}
	if tc.LastResponse.StatusCode != status {
		return fmt.Errorf("expected status %d, got %d: %s",
			status, tc.LastResponse.StatusCode, tc.LastResponseBody)
	}
	return nil
}

func (tc *TestContext) responseShouldContain(ctx context.Context, text string) error {
	if !tc.ResponseContains(text) {
		return fmt.Errorf("response does not contain %q: %s", text, tc.LastResponseBody)
	}
	return nil
}

func (tc *TestContext) responseFieldShouldEqual(ctx context.Context, field, expected string) error {
	value, err := tc.GetResponseField(field)
	if err != nil {
		return err
	}

	var actual string
	switch v := value.(type) {
	case string:
		actual = v
	case bool:
		actual = strconv.FormatBool(v)
	case float64:
		actual = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		actual = fmt.Sprintf("%v", v)
	}

	if actual != expected {
		return fmt.Errorf("expected field %q to equal %q, got %q", field, expected, actual)
	}
	return nil
}
