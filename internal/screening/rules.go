package screening

// Default rule data for the screening registry. Everything in this file can
// be replaced at runtime through LoadRegistryFile without recompiling.

// defaultExclusions returns the exclusion categories in evaluation order.
// The first category with a keyword hit wins.
func defaultExclusions() []ExclusionCategory {
	return []ExclusionCategory{
		{
			Tag:   "drug-registration",
			Label: "仅境外药品注册/上市批准",
			Keywords: []string{
				"药品注册", "药品上市", "上市批准", "上市许可",
				"临床试验", "药物临床", "FDA", "EMA", "仿制药",
			},
		},
		{
			Tag:   "financial-disclosure",
			Label: "运营数据/财务数据信息披露",
			Keywords: []string{
				"主要运营数据", "主要经营数据", "主要财务数据",
				"运营数据公告", "经营数据公告", "业绩快报", "业绩预告",
			},
		},
		{
			Tag:   "export-trade",
			Label: "出口贸易业务",
			Keywords: []string{
				"出口贸易", "出口订单", "出口产品", "产品出口", "出口销售",
			},
		},
		{
			Tag:   "voluntary-disclosure",
			Label: "自愿性信息披露",
			Keywords: []string{
				"自愿性信息披露", "自愿披露", "自愿性披露",
			},
		},
		{
			Tag:   "non-investment-business",
			Label: "非境外投资业务",
			Keywords: []string{
				"不涉及境外投资", "无境外投资", "非境外投资", "不构成境外投资",
			},
		},
		{
			Tag:   "domestic-transaction",
			Label: "境内交易",
			Keywords: []string{
				"境内交易", "纯境内", "均位于境内", "全部位于境内",
			},
		},
	}
}

// defaultOverseasMarkers returns the generic overseas markers. Region and
// country names from the country list count as markers too.
func defaultOverseasMarkers() []string {
	return []string{"境外", "海外", "国外"}
}

// defaultCountries returns the recognized country and region names. Order is
// irrelevant for matching; ties at the same text position resolve to the
// longer name, so 印度尼西亚 wins over 印度.
func defaultCountries() []string {
	return []string{
		// Asia
		"日本", "韩国", "新加坡", "马来西亚", "泰国", "越南", "印度尼西亚",
		"印度", "菲律宾", "柬埔寨", "缅甸", "老挝", "文莱", "巴基斯坦",
		"孟加拉国", "斯里兰卡", "尼泊尔", "蒙古", "哈萨克斯坦",
		"乌兹别克斯坦", "吉尔吉斯斯坦", "塔吉克斯坦", "土库曼斯坦",
		"沙特阿拉伯", "阿联酋", "卡塔尔", "科威特", "阿曼", "巴林",
		"以色列", "伊朗", "伊拉克", "约旦", "黎巴嫩", "土耳其",
		// Europe
		"德国", "法国", "英国", "意大利", "西班牙", "葡萄牙", "荷兰",
		"比利时", "卢森堡", "瑞士", "瑞典", "挪威", "丹麦", "芬兰",
		"冰岛", "奥地利", "爱尔兰", "波兰", "捷克", "斯洛伐克", "匈牙利",
		"罗马尼亚", "保加利亚", "希腊", "塞尔维亚", "克罗地亚",
		"斯洛文尼亚", "爱沙尼亚", "拉脱维亚", "立陶宛", "俄罗斯", "乌克兰",
		"白俄罗斯", "格鲁吉亚", "亚美尼亚", "阿塞拜疆",
		// Americas
		"美国", "加拿大", "墨西哥", "巴西", "阿根廷", "智利", "秘鲁",
		"哥伦比亚", "委内瑞拉", "厄瓜多尔", "玻利维亚", "乌拉圭", "巴拉圭",
		"巴拿马", "哥斯达黎加", "古巴",
		// Africa
		"埃及", "南非", "尼日利亚", "肯尼亚", "埃塞俄比亚", "坦桑尼亚",
		"加纳", "摩洛哥", "阿尔及利亚", "突尼斯", "安哥拉", "赞比亚",
		"津巴布韦", "刚果", "几内亚", "莫桑比克",
		// Oceania
		"澳大利亚", "新西兰", "巴布亚新几内亚", "斐济",
		// Regions with separate customs territories
		"香港", "澳门", "台湾",
	}
}

// defaultInvestmentKeywords returns the investment-action keywords checked
// against the document text and filename.
func defaultInvestmentKeywords() []string {
	return []string{
		"投资", "收购", "并购", "股权", "股份", "设立", "成立",
		"放款", "借款", "融资", "建设", "新建", "合资", "出让",
		"债权", "资产权益",
	}
}

// defaultInvestmentPatterns returns investment-action patterns for phrasing
// the keywords alone miss. Quantifiers stay bounded.
func defaultInvestmentPatterns() []string {
	return []string{
		`投资.{0,20}(?:境外|海外)`,
		`(?:境外|海外).{0,20}投资`,
		`境外.{0,20}放款`,
		`放款.{0,20}境外`,
		`收购.{0,50}(?:股权|股份)`,
		`设立.{0,30}(?:子公司|公司|工厂)`,
		`成立.{0,30}(?:子公司|公司)`,
		`对外投资.{0,20}(?:境外|海外)`,
		`债权.{0,30}资产权益`,
		`境外.{0,20}(?:合资|合作)`,
	}
}

// defaultTransactionTypes returns the transaction-type table in evaluation
// order. The first type with a keyword hit wins; no hit yields 其他.
func defaultTransactionTypes() []TransactionType {
	return []TransactionType{
		{Name: "股权收购", Keywords: []string{"收购", "并购", "受让股权", "购买股权", "收购股权"}},
		{Name: "设立子公司", Keywords: []string{"设立", "成立", "新设", "投资设立"}},
		{Name: "增资", Keywords: []string{"增资", "注资", "增加注册资本"}},
		{Name: "合资", Keywords: []string{"合资", "合营", "共同投资", "共同出资"}},
		{Name: "境外放款", Keywords: []string{"放款", "借款", "贷款"}},
		{Name: "资产购买", Keywords: []string{"购买资产", "资产收购", "收购资产"}},
		{Name: "项目建设", Keywords: []string{"建设", "新建", "扩建", "基地"}},
	}
}

// defaultApprovalMatters returns the domestic filing/approval matters checked
// for the compliance sheet.
func defaultApprovalMatters() []ApprovalMatter {
	return []ApprovalMatter{
		{Name: "发改委备案", Keywords: []string{"发改委", "发展改革委", "发展和改革委员会"}},
		{Name: "商务部备案", Keywords: []string{"商务部", "商务主管部门", "商务厅"}},
		{Name: "外汇登记", Keywords: []string{"外汇登记", "外汇管理", "外汇局"}},
		{Name: "董事会审议", Keywords: []string{"董事会审议", "经董事会", "董事会批准"}},
		{Name: "股东大会审议", Keywords: []string{"股东大会审议", "提交股东大会", "股东大会批准"}},
	}
}

// defaultFieldRules returns the per-field extraction rules. Pattern chains
// run most specific first; the first match ends the chain.
func defaultFieldRules() []FieldRule {
	return []FieldRule{
		{
			Category: CategoryBasicInfo,
			Field:    FieldTargetCompany,
			Patterns: []string{
				`(?:收购|投资|并购).{0,6}?{country}.{0,4}?([A-Za-z][A-Za-z0-9&\.\- ]{0,40}?(?:公司|集团|Inc|Ltd|LLC|GmbH|Corp))`,
				`(?:收购|投资|并购).{0,6}?{country}.{0,4}?([\p{Han}A-Za-z0-9]{2,30}?(?:公司|集团))`,
				`(?:在|于){country}(?:设立|成立|新设|投资).{0,10}?([\p{Han}A-Za-z0-9]{2,30}?(?:公司|工厂|基地|项目))`,
				`标的公司(?:为|是|系)?[：:]?\s*([\p{Han}A-Za-z0-9（）()\.\- ]{2,40}?(?:公司|集团|Inc|Ltd|LLC|GmbH))`,
				`(?:收购|并购)([\p{Han}A-Za-z0-9]{2,30}?(?:公司|集团))(?:股权|股份|.{0,10}?的股权)`,
				`(?:设立|成立|新设)([\p{Han}A-Za-z0-9]{2,30}?(?:公司|工厂|基地))`,
			},
		},
		{
			Category: CategoryBasicInfo,
			Field:    FieldDealAmount,
			Patterns: []string{
				`([\d,]{1,20}(?:\.\d{1,6})?\s*亿(?:美元|欧元|英镑|日元|港元|港币|新元|新加坡元|澳元|加元|瑞士法郎))`,
				`([\d,]{1,20}(?:\.\d{1,6})?\s*万美元)`,
				`([\d,]{1,20}(?:\.\d{1,6})?\s*亿元)`,
				`([\d,]{1,20}(?:\.\d{1,6})?\s*万元)`,
				`([\d,]{1,20}(?:\.\d{1,6})?\s*(?:百万|千万)(?:美元|欧元|英镑|元))`,
				`([\d,]{1,20}(?:\.\d{1,6})?\s*元)`,
				`([$€£]\s?[\d,]{1,20}(?:\.\d{1,6})?\s*(?:million|billion|万|亿)?)`,
			},
		},
		{
			Category: CategoryBasicInfo,
			Field:    FieldEquityRatio,
			Keywords: []string{"股权", "股份", "持股"},
			Patterns: []string{
				`(\d{1,3}(?:\.\d{1,4})?)\s*%`,
				`百分之(百|[零一二三四五六七八九十]{1,5})`,
			},
		},
		{
			Category: CategoryBasicInfo,
			Field:    FieldCounterparty,
			Patterns: []string{
				`(?:交易对手方|交易对手|交易对方|出售方|转让方|合作方)(?:为|是|系)?[：:]?\s*([\p{Han}A-Za-z0-9（）()\.\- ]{2,40}?(?:公司|集团|Inc|Ltd|LLC|GmbH|基金|合伙企业))`,
				`与\s*([^\s，。、]{2,30})\s*(?:签署|签订)`,
			},
		},
		{
			Category: CategoryBasicInfo,
			Field:    FieldProgress,
			Patterns: []string{
				`(?:尚需|还需|仍需).{0,40}(?:批准|核准|备案|登记)`,
				`已(?:完成|取得).{0,30}(?:备案|登记|核准|批准)`,
				`(?:本次交易|本次投资|本事项).{0,20}(?:已|尚)(?:经|需|未).{0,30}(?:审议|批准|通过)`,
			},
			Defaults: []ValueRule{
				{Pattern: `拟|计划`, Value: "拟进行/计划中"},
				{Pattern: `已完成|已交割`, Value: "已完成/已交割"},
				{Pattern: `已签署|已签订`, Value: "已签署协议"},
				{Pattern: `批准`, Value: "已获得批准"},
			},
			Fallback: "未明确",
		},
		{
			Category: CategoryBasicInfo,
			Field:    FieldBusinessScope,
			Keywords: []string{"主营业务", "主要从事", "经营范围", "业务范围", "主要业务"},
			Exclude:  []string{"我司", "本公司是", "公司是", "从事贸易类", "凭证结算"},
			Clip:     100,
			MinLen:   10,
		},
		{
			Category: CategoryStructure,
			Field:    FieldInvestor,
			Patterns: []string{
				`(?:通过|经由)(?:全资子公司|控股子公司|下属子公司)?\s*([\p{Han}A-Za-z0-9（）()]{2,30}?(?:公司|集团))(?:作为投资主体)?`,
				`投资主体(?:为|是|系)?[：:]?\s*([\p{Han}A-Za-z0-9（）()]{2,30}?(?:公司|集团))`,
				`(?:以|由)\s*([\p{Han}A-Za-z0-9（）()]{2,30}?(?:公司|集团))\s*(?:作为|为)(?:实施|投资)主体`,
			},
			Defaults: []ValueRule{
				{Pattern: `设立|成立`, Value: "母公司(公告主体)"},
			},
		},
		{
			Category: CategoryStructure,
			Field:    FieldSPV,
			Keywords: []string{
				"SPV", "特殊目的公司", "中间层", "全资孙公司",
				"控股子公司", "全资子公司",
			},
			Clip: 80,
		},
		{
			Category: CategoryStructure,
			Field:    FieldFunding,
			Patterns: []string{
				`资金来源(?:为|是|系|主要为)?[：:]?\s*([^。；;！!？?\n]{2,40})`,
			},
			Defaults: []ValueRule{
				{Pattern: `自有及自筹资金`, Value: "自有及自筹资金"},
				{Pattern: `自有资金`, Value: "自有资金"},
				{Pattern: `募集资金`, Value: "募集资金"},
				{Pattern: `银行贷款`, Value: "银行贷款"},
				{Pattern: `银行借款`, Value: "银行借款"},
			},
		},
		{
			Category: CategoryStructure,
			Field:    FieldPayment,
			Patterns: []string{
				`(?:以|采用|采取)([^。；;！!？?\n]{1,20}?)(?:方式)?(?:支付|付款)`,
			},
			Defaults: []ValueRule{
				{Pattern: `现金`, Value: "现金"},
				{Pattern: `股权(?s).{0,30}置换`, Value: "股权置换"},
			},
		},
		{
			Category: CategoryStructure,
			Field:    FieldVAM,
			Keywords: []string{"对赌", "业绩承诺", "业绩补偿", "盈利预测", "净利润承诺"},
			Clip:     80,
		},
		{
			Category: CategoryStructure,
			Field:    FieldArchitecture,
			Keywords: []string{"交易架构", "投资路径", "股权结构", "投资结构"},
			Clip:     100,
		},
		{
			Category: CategoryApprovals,
			Field:    FieldForeignApprovals,
			Keywords: []string{
				"反垄断审查", "经营者集中", "外商投资审查", "国家安全审查",
				"境外监管", "外国政府", "东道国审批",
			},
			Clip: 60,
		},
		{
			Category: CategoryApprovals,
			Field:    FieldApprovalProgress,
			Keywords: []string{"已获", "已通过", "尚需", "正在办理", "备案", "批准"},
			Clip:     60,
		},
		{
			Category: CategoryApprovals,
			Field:    FieldApprovalTerms,
			Keywords: []string{"先决条件", "前提条件", "审批条件", "所需条件"},
			Clip:     80,
		},
		{
			Category: CategoryApprovals,
			Field:    FieldClosingTerms,
			Keywords: []string{"交割条件", "完成条件", "交割前提", "完成前提"},
			Clip:     80,
		},
		{
			Category: CategoryApprovals,
			Field:    FieldLicenses,
			Keywords: []string{"牌照", "资质", "许可证", "特许经营", "行业许可"},
			Clip:     80,
			MinLen:   20,
		},
	}
}
