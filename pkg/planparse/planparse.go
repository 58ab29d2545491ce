package planparse

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// 行程记录的历史形态有三种：itinerary_schedules（按天索引的 JSON 对象字符串）、
// plan_data 字符串（AI 回复，JSON 包在 ```json 围栏里）、plan_data 对象
// （可能还套着模型响应信封）。这里是唯一的归一化入口，所有读取方共用。
// 解析失败一律吞掉，返回空结果——尽力展示，不向调用方抛错。

// DefaultTitle 无标题行程的兜底标题。
const DefaultTitle = "제목 없음"

// Coord 容忍数字或数字字符串两种编码的坐标值。
type Coord float64

func (c *Coord) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return nil
		}
		*c = Coord(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	*c = Coord(f)
	return nil
}

// Activity 一天内的单个日程条目。
type Activity struct {
	Time    string `json:"time,omitempty"`
	Name    string `json:"name,omitempty"`
	Notes   string `json:"notes,omitempty"`
	Lat     *Coord `json:"lat,omitempty"`
	Lng     *Coord `json:"lng,omitempty"`
	Address string `json:"address,omitempty"`
}

// HasLocation 判断条目是否带有效坐标。
func (a Activity) HasLocation() bool {
	return a.Lat != nil && a.Lng != nil
}

func (a Activity) isBlank() bool {
	return strings.TrimSpace(a.Time) == "" &&
		strings.TrimSpace(a.Name) == "" &&
		strings.TrimSpace(a.Notes) == ""
}

// Day 行程中的一天。
type Day struct {
	Date      string     `json:"date,omitempty"`
	Title     string     `json:"title,omitempty"`
	Schedules []Activity `json:"schedules"`
}

func (d Day) isBlank() bool {
	if strings.TrimSpace(d.Title) != "" || strings.TrimSpace(d.Date) != "" {
		return false
	}
	for _, a := range d.Schedules {
		if !a.isBlank() {
			return false
		}
	}
	return true
}

// Itinerary 所有展示方消费的规范模型。
type Itinerary struct {
	Title string `json:"title"`
	Days  []Day  `json:"days"`
}

// FirstLocated 按 days[].schedules[] 顺序线性扫描，返回第一个带坐标的条目。
func (it Itinerary) FirstLocated() (Activity, bool) {
	for _, day := range it.Days {
		for _, act := range day.Schedules {
			if act.HasLocation() {
				return act, true
			}
		}
	}
	return Activity{}, false
}

var fencedJSON = regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```")

// Normalize 从任意形态的原始行程记录提取规范模型。
// 三种提取策略按固定优先级尝试；全部失败时返回空 days 和兜底标题。
func Normalize(record map[string]interface{}) Itinerary {
	it := Itinerary{Title: DefaultTitle, Days: []Day{}}
	if record == nil {
		return it
	}

	var days []Day
	var parsed map[string]interface{}

	if raw, ok := record["itinerary_schedules"].(string); ok && strings.TrimSpace(raw) != "" {
		if obj := decodeObject(raw); obj != nil {
			parsed = obj
			days = decodeDays(valuesInKeyOrder(obj))
		}
	} else if pd, ok := record["plan_data"]; ok && pd != nil {
		parsed = parsePlanData(pd, 0)
		if parsed != nil {
			if list, ok := parsed["days"].([]interface{}); ok {
				days = decodeDays(list)
			}
		}
	}

	// 兜底：没有拿到 days 数组时，取已解析对象的全部值（老格式/半损坏记录）
	if len(days) == 0 && parsed != nil {
		days = decodeDays(valuesInKeyOrder(parsed))
	}

	it.Title = resolveTitle(parsed, record)
	it.Days = dropBlankDays(days)
	return it
}

// parsePlanData 解析 plan_data 字段。字符串先做围栏提取，对象直接使用；
// 两种情况都检查模型响应信封并向下递归一层。
func parsePlanData(v interface{}, depth int) map[string]interface{} {
	if depth > 1 {
		return nil
	}

	switch pd := v.(type) {
	case string:
		inner := pd
		if m := fencedJSON.FindStringSubmatch(pd); m != nil {
			inner = m[1]
		}
		obj := decodeObject(inner)
		if obj == nil && inner != pd {
			obj = decodeObject(pd)
		}
		if obj == nil {
			return nil
		}
		if text, ok := envelopeText(obj); ok {
			return parsePlanData(text, depth+1)
		}
		return obj
	case map[string]interface{}:
		if text, ok := envelopeText(pd); ok {
			return parsePlanData(text, depth+1)
		}
		return pd
	default:
		return nil
	}
}

// envelopeText 提取 candidates[0].content.parts[0].text。
func envelopeText(obj map[string]interface{}) (string, bool) {
	candidates, ok := obj["candidates"].([]interface{})
	if !ok || len(candidates) == 0 {
		return "", false
	}
	first, ok := candidates[0].(map[string]interface{})
	if !ok {
		return "", false
	}
	content, ok := first["content"].(map[string]interface{})
	if !ok {
		return "", false
	}
	parts, ok := content["parts"].([]interface{})
	if !ok || len(parts) == 0 {
		return "", false
	}
	part, ok := parts[0].(map[string]interface{})
	if !ok {
		return "", false
	}
	text, ok := part["text"].(string)
	return text, ok
}

func resolveTitle(parsed, record map[string]interface{}) string {
	if t := stringField(parsed, "title"); t != "" {
		return t
	}
	if t := stringField(parsed, "name"); t != "" {
		return t
	}
	if t := stringField(record, "name"); t != "" {
		return t
	}
	if t := stringField(record, "title"); t != "" {
		return t
	}
	return DefaultTitle
}

func stringField(obj map[string]interface{}, key string) string {
	if obj == nil {
		return ""
	}
	if s, ok := obj[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func decodeObject(raw string) map[string]interface{} {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &obj); err != nil {
		return nil
	}
	return obj
}

// valuesInKeyOrder 取对象的全部值。Go 的 map 没有插入序，
// 按天索引数值升序排（非数字键退回字典序），等价于原始记录的书写顺序。
func valuesInKeyOrder(obj map[string]interface{}) []interface{} {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, iok := keyIndex(keys[i])
		nj, jok := keyIndex(keys[j])
		if iok && jok {
			if ni != nj {
				return ni < nj
			}
			return keys[i] < keys[j]
		}
		if iok != jok {
			return iok
		}
		return keys[i] < keys[j]
	})

	values := make([]interface{}, 0, len(keys))
	for _, k := range keys {
		values = append(values, obj[k])
	}
	return values
}

var keyDigits = regexp.MustCompile(`\d+`)

func keyIndex(key string) (int, bool) {
	m := keyDigits.FindString(key)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// decodeDays 把松散的 interface{} 列表转成类型化的 Day 列表，非对象值丢弃。
func decodeDays(values []interface{}) []Day {
	days := make([]Day, 0, len(values))
	for _, v := range values {
		obj, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		raw, err := json.Marshal(obj)
		if err != nil {
			continue
		}
		var day Day
		if err := json.Unmarshal(raw, &day); err != nil {
			continue
		}
		days = append(days, day)
	}
	return days
}

// dropBlankDays 过滤标题、日期、全部条目均为空白的天。
// 历史客户端各版本在这一点上不一致，这里统一为总是过滤。
func dropBlankDays(days []Day) []Day {
	filtered := make([]Day, 0, len(days))
	for _, d := range days {
		if d.isBlank() {
			continue
		}
		if d.Schedules == nil {
			d.Schedules = []Activity{}
		}
		filtered = append(filtered, d)
	}
	return filtered
}
