package planparse

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}

func TestNormalizeItinerarySchedules(t *testing.T) {
	rec := record(t, `{
		"name": "여수 여행",
		"itinerary_schedules": "{\"1\":{\"date\":\"2025-05-31\",\"title\":\"1일차\",\"schedules\":[{\"time\":\"09:00\",\"name\":\"돌산공원\"}]},\"0\":{\"date\":\"2025-05-30\",\"title\":\"출발\",\"schedules\":[{\"time\":\"07:00\",\"name\":\"KTX 탑승\"}]},\"2\":{\"date\":\"2025-06-01\",\"schedules\":[{\"time\":\"10:00\",\"name\":\"오동도\"}]}}"
	}`)

	it := Normalize(rec)

	assert.Equal(t, "여수 여행", it.Title)
	require.Len(t, it.Days, 3)
	assert.Equal(t, "2025-05-30", it.Days[0].Date)
	assert.Equal(t, "2025-05-31", it.Days[1].Date)
	assert.Equal(t, "2025-06-01", it.Days[2].Date)
	assert.Equal(t, "KTX 탑승", it.Days[0].Schedules[0].Name)
}

func TestNormalizeFencedPlanData(t *testing.T) {
	rec := record(t, `{
		"plan_data": "서울 여행 일정입니다.\n`+"```json"+`\n{\"title\":\"서울 2박 3일\",\"days\":[{\"date\":\"2025-07-01\",\"title\":\"1일차\",\"schedules\":[{\"time\":\"10:00\",\"name\":\"경복궁\",\"lat\":37.5796,\"lng\":\"126.977\"}]}]}\n`+"```"+`\n즐거운 여행 되세요."
	}`)

	it := Normalize(rec)

	assert.Equal(t, "서울 2박 3일", it.Title)
	require.Len(t, it.Days, 1)
	require.Len(t, it.Days[0].Schedules, 1)

	act := it.Days[0].Schedules[0]
	require.True(t, act.HasLocation())
	assert.InDelta(t, 37.5796, float64(*act.Lat), 0.0001)
	assert.InDelta(t, 126.977, float64(*act.Lng), 0.0001)
}

func TestNormalizeEnvelopePlanData(t *testing.T) {
	inner := `{\"name\":\"부산 여행\",\"days\":[{\"date\":\"2025-08-10\",\"schedules\":[{\"time\":\"09:00\",\"name\":\"해운대\"}]},{\"date\":\"2025-08-11\",\"schedules\":[{\"time\":\"11:00\",\"name\":\"광안리\"}]}]}`
	rec := record(t, `{
		"plan_data": {
			"candidates": [{"content": {"parts": [{"text": "`+"```json"+`\n`+inner+`\n`+"```"+`"}]}}]
		}
	}`)

	it := Normalize(rec)

	assert.Equal(t, "부산 여행", it.Title)
	require.Len(t, it.Days, 2)
	assert.Equal(t, "해운대", it.Days[0].Schedules[0].Name)
	assert.Equal(t, "광안리", it.Days[1].Schedules[0].Name)
}

func TestNormalizeValuesFallback(t *testing.T) {
	// 老格式：plan_data 直接就是按天索引的对象，没有 days 数组
	rec := record(t, `{
		"title": "제주 여행",
		"plan_data": "{\"day2\":{\"date\":\"2025-09-02\",\"schedules\":[]},\"day1\":{\"date\":\"2025-09-01\",\"schedules\":[{\"time\":\"08:00\",\"name\":\"비행기\"}]}}"
	}`)

	it := Normalize(rec)

	assert.Equal(t, "제주 여행", it.Title)
	require.Len(t, it.Days, 2)
	assert.Equal(t, "2025-09-01", it.Days[0].Date)
	assert.Equal(t, "2025-09-02", it.Days[1].Date)
}

func TestNormalizeNeverRaises(t *testing.T) {
	cases := []map[string]interface{}{
		nil,
		{},
		{"plan_data": "not json at all"},
		{"plan_data": "```json\n{broken\n```"},
		{"plan_data": 42},
		{"plan_data": []interface{}{"a", "b"}},
		{"itinerary_schedules": "{{{"},
		{"itinerary_schedules": ""},
		{"plan_data": map[string]interface{}{"candidates": []interface{}{}}},
		{"plan_data": map[string]interface{}{
			"candidates": []interface{}{map[string]interface{}{"content": "odd"}},
		}},
	}
	for _, rec := range cases {
		it := Normalize(rec)
		assert.Equal(t, DefaultTitle, it.Title)
		assert.NotNil(t, it.Days)
		assert.Empty(t, it.Days)
	}
}

func TestNormalizeDropsBlankDays(t *testing.T) {
	rec := record(t, `{
		"name": "빈 날 테스트",
		"plan_data": "{\"days\":[{\"date\":\"2025-05-01\",\"schedules\":[{\"time\":\"09:00\",\"name\":\"출발\"}]},{\"title\":\"\",\"date\":\"\",\"schedules\":[{\"time\":\"\",\"name\":\"\",\"notes\":\"\"}]},{\"title\":\"\",\"date\":\"\",\"schedules\":[]},{\"date\":\"2025-05-02\",\"schedules\":[]}]}"
	}`)

	it := Normalize(rec)

	require.Len(t, it.Days, 2)
	assert.Equal(t, "2025-05-01", it.Days[0].Date)
	assert.Equal(t, "2025-05-02", it.Days[1].Date)
}

func TestNormalizeTitlePrecedence(t *testing.T) {
	t.Run("parsed title wins over record name", func(t *testing.T) {
		rec := record(t, `{"name":"레코드 이름","plan_data":"{\"title\":\"파싱 제목\",\"days\":[{\"date\":\"2025-01-01\",\"schedules\":[]}]}"}`)
		assert.Equal(t, "파싱 제목", Normalize(rec).Title)
	})
	t.Run("record name when parsed has none", func(t *testing.T) {
		rec := record(t, `{"name":"레코드 이름","plan_data":"{\"days\":[{\"date\":\"2025-01-01\",\"schedules\":[]}]}"}`)
		assert.Equal(t, "레코드 이름", Normalize(rec).Title)
	})
	t.Run("fallback when nothing", func(t *testing.T) {
		rec := record(t, `{"plan_data":"{\"days\":[{\"date\":\"2025-01-01\",\"schedules\":[]}]}"}`)
		assert.Equal(t, DefaultTitle, Normalize(rec).Title)
	})
}

func TestFirstLocated(t *testing.T) {
	lat, lng := Coord(35.1587), Coord(129.1604)
	it := Itinerary{Days: []Day{
		{Schedules: []Activity{{Name: "좌표 없음"}}},
		{Schedules: []Activity{
			{Name: "아직 없음"},
			{Name: "해운대", Lat: &lat, Lng: &lng},
			{Name: "뒤에 있음", Lat: &lat, Lng: &lng},
		}},
	}}

	act, ok := it.FirstLocated()
	require.True(t, ok)
	assert.Equal(t, "해운대", act.Name)

	_, ok = Itinerary{}.FirstLocated()
	assert.False(t, ok)
}

func TestRoundTripPreservesCounts(t *testing.T) {
	rec := record(t, `{
		"name": "왕복 테스트",
		"itinerary_schedules": "{\"0\":{\"date\":\"2025-03-01\",\"schedules\":[{\"time\":\"09:00\",\"name\":\"a\"},{\"time\":\"10:00\",\"name\":\"b\"}]},\"1\":{\"date\":\"2025-03-02\",\"schedules\":[{\"time\":\"11:00\",\"name\":\"c\"}]}}"
	}`)

	it := Normalize(rec)
	raw, err := json.Marshal(it.Days)
	require.NoError(t, err)

	var back []Day
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Len(t, back, len(it.Days))
	for i := range back {
		assert.Len(t, back[i].Schedules, len(it.Days[i].Schedules))
	}
}
