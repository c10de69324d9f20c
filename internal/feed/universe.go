package feed

import (
	"hash/fnv"
	"strings"

	"github.com/shopspring/decimal"
)

// stock is one listing the simulator knows by name.
type stock struct {
	Code     string
	Name     string
	Industry string
	Region   string
	Base     float64
}

var universe = []stock{
	{"600519.SH", "贵州茅台", "白酒", "华南", 1688.00},
	{"000858.SZ", "五粮液", "白酒", "西南", 142.50},
	{"000001.SZ", "平安银行", "银行", "华南", 10.85},
	{"600036.SH", "招商银行", "银行", "华南", 33.20},
	{"601318.SH", "中国平安", "保险", "华南", 44.60},
	{"300750.SZ", "宁德时代", "电池", "华东", 188.30},
	{"002594.SZ", "比亚迪", "汽车", "华南", 245.10},
	{"601127.SH", "赛力斯", "汽车", "西南", 86.40},
	{"688981.SH", "中芯国际", "半导体", "华东", 52.70},
	{"603501.SH", "韦尔股份", "半导体", "华东", 98.20},
	{"002371.SZ", "北方华创", "半导体", "华北", 310.50},
	{"300059.SZ", "东方财富", "证券", "华东", 15.30},
	{"600030.SH", "中信证券", "证券", "华北", 21.90},
	{"601888.SH", "中国中免", "旅游零售", "华南", 70.15},
	{"600276.SH", "恒瑞医药", "医药", "华东", 44.80},
	{"300760.SZ", "迈瑞医疗", "医疗器械", "华南", 285.00},
	{"000725.SZ", "京东方A", "面板", "华北", 4.12},
	{"002415.SZ", "海康威视", "安防", "华东", 31.60},
	{"600900.SH", "长江电力", "电力", "华中", 27.35},
	{"601012.SH", "隆基绿能", "光伏", "西北", 19.80},
	{"300274.SZ", "阳光电源", "光伏", "华东", 78.90},
	{"002230.SZ", "科大讯飞", "软件", "华东", 46.20},
	{"600570.SH", "恒生电子", "软件", "华东", 23.70},
	{"000063.SZ", "中兴通讯", "通信", "华南", 28.40},
}

// lookupStock finds code in the universe. Unknown codes get a stable
// synthetic listing so any watchlist renders.
func lookupStock(code string) stock {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, s := range universe {
		if s.Code == code {
			return s
		}
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(code))
	base := 5 + float64(h.Sum32()%9500)/100
	return stock{Code: code, Name: code, Industry: "其他", Region: "其他", Base: base}
}

// limitPct is the daily price limit in percent for code.
func limitPct(code string) float64 {
	switch {
	case strings.HasPrefix(code, "300"), strings.HasPrefix(code, "688"):
		return 20
	default:
		return 10
	}
}

// round2 rounds to two decimals the way quotes are displayed.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
