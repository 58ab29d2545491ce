package dto

import (
	"encoding/json"
	"testing"

	"github.com/cloudwego/hertz/pkg/app/server/binding"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindSavePlan(t *testing.T, body string) SavePlanRequest {
	t.Helper()
	req := protocol.NewRequest("POST", "/travel/save_plan", nil)
	req.SetBody([]byte(body))
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.Header.SetContentLength(len(req.Body()))

	var out SavePlanRequest
	require.NoError(t, binding.DefaultBinder().Bind(req, &out, nil))
	return out
}

func TestSavePlanRequestPaidPlanForms(t *testing.T) {
	// 支付流程把 paid_plan 发成数字 1，老版本发布尔
	cases := []struct {
		name   string
		body   string
		expect bool
	}{
		{"numeric one", `{"title":"오사카 여행","paid_plan":1}`, true},
		{"numeric zero", `{"title":"오사카 여행","paid_plan":0}`, false},
		{"bool true", `{"title":"오사카 여행","paid_plan":true}`, true},
		{"bool false", `{"title":"오사카 여행","paid_plan":false}`, false},
		{"string one", `{"title":"오사카 여행","paid_plan":"1"}`, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := bindSavePlan(t, tc.body)
			require.NotNil(t, req.PaidPlan)
			assert.Equal(t, tc.expect, bool(*req.PaidPlan))
		})
	}
}

func TestSavePlanRequestPaidPlanAbsent(t *testing.T) {
	req := bindSavePlan(t, `{"title":"오사카 여행"}`)
	assert.Nil(t, req.PaidPlan)
}

func TestFlexBoolRejectsGarbage(t *testing.T) {
	var req SavePlanRequest
	err := json.Unmarshal([]byte(`{"paid_plan":"yes"}`), &req)
	assert.Error(t, err)
}

func TestSavePlanRequestCamelCaseInfos(t *testing.T) {
	// 编辑页用驼峰字段名发航班和住宿
	req := bindSavePlan(t, `{
		"plan_id": 42,
		"name": "제주 3박4일",
		"flightInfos": [{"airline":"KE","flight_no":"KE1203"}],
		"accommodationInfos": [{"name":"제주 호텔"}]
	}`)

	require.NotNil(t, req.PlanID)
	assert.EqualValues(t, 42, *req.PlanID)

	assert.True(t, json.Valid(req.Flight()))
	assert.Contains(t, string(req.Flight()), "KE1203")
	assert.Contains(t, string(req.Accommodation()), "제주 호텔")
}

func TestSavePlanRequestSnakeCaseWins(t *testing.T) {
	req := bindSavePlan(t, `{
		"flight_info": [{"airline":"KE"}],
		"flightInfos": [{"airline":"OZ"}]
	}`)

	assert.Contains(t, string(req.Flight()), "KE")
	assert.NotContains(t, string(req.Flight()), "OZ")
}
