package config

// DefaultTypeSpecs is the built-in registry of Moldovan fiscal document
// types: keyword sets per language and the per-type extraction grammar.
// Patterns within one field go most-specific-first; the extractor stops at
// the first pattern that matches.
func DefaultTypeSpecs() []TypeSpec {
	numberPatterns := []string{
		`(?:nr|№|numărul|номер)[\s.:#]*([A-Z]{1,5}-\d{2,4}-\d{1,6})`,
		`(?:factur[aă]|invoice|счет|contract|aviz|ordin|chitanț[aă])[^\S\n]*(?:fiscal[aă][^\S\n]*)?(?:nr|№|#)[\s.:]*([A-Z0-9][A-Z0-9/-]*)`,
		`(?:nr|№|numărul|номер)[\s.:#]*([A-Z0-9][A-Z0-9/-]{2,})`,
	}
	datePatterns := []string{
		`(?:data|дата|date)[^\S\n]*[:.]?[^\S\n]*(\d{1,2}[./-]\d{1,2}[./-]\d{2,4})`,
		`(\d{1,2}\.\d{1,2}\.\d{4})`,
	}
	totalPatterns := []string{
		`(?:total|итого|suma[^\S\n]+total[aă])[^\S\n]*:?[^\S\n]*(\d[\d.,]*)`,
	}
	amountPatterns := []string{
		`(?:sum[aă]|сумма|amount)[^\S\n]*:?[^\S\n]*(\d[\d.,]*)`,
	}

	return []TypeSpec{
		{
			ID:         "factura_fiscala",
			NameRO:     "Factură fiscală",
			NameRU:     "Счет-фактура",
			FiscalCode: "FISC",
			KeywordsRO: []string{"factură fiscală", "factura fiscala", "fiscal", "tva", "nds"},
			KeywordsRU: []string{"счет-фактура", "фактура", "fiscal", "тва", "ндс"},
			Fields: []FieldSpec{
				{Name: "number", Patterns: numberPatterns},
				{Name: "date", Patterns: datePatterns},
				{Name: "seller", Patterns: []string{`(?:furnizor|поставщик|seller)[^\S\n]*:?[^\S\n]*([^\n]+)`}},
				{Name: "buyer", Patterns: []string{`(?:cumpărător|client|покупатель|buyer)[^\S\n]*:?[^\S\n]*([^\n]+)`}},
				{Name: "idno", Patterns: []string{`(?:idno|cod[^\S\n]+fiscal|налоговый[^\S\n]+код)[^\S\n]*:?[^\S\n]*(\d{13})`}},
				{Name: "vat_amount", Patterns: []string{`(?:tva|nds|ндс)[^\S\n]*:?[^\S\n]*(\d[\d.,]*)`}},
				{Name: "total_amount", Patterns: totalPatterns},
			},
			Required: []string{"number", "date", "seller", "buyer", "idno", "vat_amount", "total_amount"},
		},
		{
			ID:         "bon_fiscal",
			NameRO:     "Bon fiscal",
			NameRU:     "Фискальный чек",
			FiscalCode: "BON",
			KeywordsRO: []string{"bon fiscal", "bon", "casă de marcat", "terminal fiscal"},
			KeywordsRU: []string{"фискальный чек", "чек", "кассовый чек", "касса"},
			Fields: []FieldSpec{
				{Name: "date", Patterns: datePatterns},
				{Name: "quantity", Patterns: []string{`(?:cantitate|количество|qty)[^\S\n]*:?[^\S\n]*(\d[\d.,]*)`}},
				{Name: "total_amount", Patterns: totalPatterns},
				{Name: "cash_register", Patterns: []string{`(?:terminal|касса|cas[aă])[^\S\n]*:?[^\S\n]*([A-Z0-9-]+)`}},
			},
			Required: []string{"date", "total_amount", "cash_register"},
		},
		{
			ID:         "stat_plata",
			NameRO:     "Stat de plată",
			NameRU:     "Ведомость на выплату",
			KeywordsRO: []string{"stat de plată", "stat plata", "salarii", "angajați"},
			KeywordsRU: []string{"ведомость", "зарплата", "сотрудники", "выплата"},
			Fields: []FieldSpec{
				{Name: "period", Patterns: []string{`(?:perioada|период|period)[^\S\n]*:?[^\S\n]*([^\n]+)`}},
				{Name: "employee", Patterns: []string{`(?:angajat|сотрудник|employee)[^\S\n]*:?[^\S\n]*([^\n]+)`}},
				{Name: "position", Patterns: []string{`(?:funcți[ae]|должность|position)[^\S\n]*:?[^\S\n]*([^\n]+)`}},
				{Name: "salary", Patterns: []string{`(?:salariu|зарплата|salary)[^\S\n]*:?[^\S\n]*(\d[\d.,]*)`}},
				{Name: "taxes", Patterns: []string{`(?:impozit|налоги|taxes)[^\S\n]*:?[^\S\n]*(\d[\d.,]*)`}},
				{Name: "contributions", Patterns: []string{`(?:contribuții|взносы|contributions)[^\S\n]*:?[^\S\n]*(\d[\d.,]*)`}},
				{Name: "total_amount", Patterns: totalPatterns},
			},
			Required: []string{"period", "employee", "salary", "total_amount"},
		},
		{
			ID:         "declaratie_tva",
			NameRO:     "Declarație TVA",
			NameRU:     "Декларация НДС",
			FiscalCode: "DECL",
			KeywordsRO: []string{"declarație tva", "declaratie tva", "perioada fiscală", "impozit"},
			KeywordsRU: []string{"декларация ндс", "декларация", "налоговый период", "исчисленный налог"},
			Fields: []FieldSpec{
				{Name: "period", Patterns: []string{`(?:perioada|период|period)[^\S\n]*:?[^\S\n]*([^\n]+)`}},
				{Name: "company", Patterns: []string{
					`(?:srl|ооо|sa)[^\S\n]+["']([^"'\n]+)["']`,
					`(?:compania|компания|company)[^\S\n]*:?[^\S\n]*([^\n]+)`,
				}},
				{Name: "idno", Patterns: []string{`(?:idno|cod[^\S\n]+fiscal|налоговый[^\S\n]+код)[^\S\n]*:?[^\S\n]*(\d{13})`}},
				{Name: "vat_amount", Patterns: []string{`(?:tva|nds|ндс)[^\S\n]*:?[^\S\n]*(\d[\d.,]*)`}},
				{Name: "total_sales", Patterns: []string{`(?:vânzări|livrări|продажи|реализация)[^\S\n]*:?[^\S\n]*(\d[\d.,]*)`}},
			},
			Required: []string{"period", "company", "idno", "vat_amount"},
		},
		{
			ID:         "contract",
			NameRO:     "Contract",
			NameRU:     "Договор",
			FiscalCode: "CONTR",
			KeywordsRO: []string{"contract", "acord", "convenție", "clauze"},
			KeywordsRU: []string{"договор", "контракт", "соглашение", "обязательства"},
			Fields: []FieldSpec{
				{Name: "number", Patterns: numberPatterns},
				{Name: "date", Patterns: datePatterns},
				{Name: "parties", Patterns: []string{`(?:părți|părțile|стороны|parties)[^\S\n]*:?[^\S\n]*([^\n]+)`}},
				{Name: "subject", Patterns: []string{`(?:obiect|предмет|subject)[^\S\n]*:?[^\S\n]*([^\n]+)`}},
				{Name: "amount", Patterns: amountPatterns},
			},
			Required: []string{"number", "date", "parties", "amount"},
		},
		{
			ID:         "aviz_expeditie",
			NameRO:     "Aviz de expediție",
			NameRU:     "Накладная",
			FiscalCode: "AVIZ",
			KeywordsRO: []string{"aviz de expediție", "aviz", "expediție", "livrare"},
			KeywordsRU: []string{"накладная", "отгрузка", "доставка", "товар"},
			Fields: []FieldSpec{
				{Name: "number", Patterns: numberPatterns},
				{Name: "date", Patterns: datePatterns},
				{Name: "sender", Patterns: []string{`(?:expeditor|отправитель|sender)[^\S\n]*:?[^\S\n]*([^\n]+)`}},
				{Name: "receiver", Patterns: []string{`(?:destinatar|получатель|receiver)[^\S\n]*:?[^\S\n]*([^\n]+)`}},
				{Name: "total_amount", Patterns: totalPatterns},
			},
			Required: []string{"number", "date", "sender", "receiver"},
		},
		{
			ID:         "ordine_plata",
			NameRO:     "Ordin de plată",
			NameRU:     "Платёжное поручение",
			FiscalCode: "ORDIN",
			KeywordsRO: []string{"ordin de plată", "ordin plata", "transfer", "bancă"},
			KeywordsRU: []string{"платёжное поручение", "платежное поручение", "перевод", "банк"},
			Fields: []FieldSpec{
				{Name: "number", Patterns: numberPatterns},
				{Name: "date", Patterns: datePatterns},
				{Name: "payer", Patterns: []string{`(?:plătitor|плательщик|payer)[^\S\n]*:?[^\S\n]*([^\n]+)`}},
				{Name: "payee", Patterns: []string{`(?:beneficiar|получатель|payee)[^\S\n]*:?[^\S\n]*([^\n]+)`}},
				{Name: "amount", Patterns: amountPatterns},
				{Name: "purpose", Patterns: []string{`(?:destinația|назначение|purpose)[^\S\n]*:?[^\S\n]*([^\n]+)`}},
				{Name: "bank", Patterns: []string{`(?:banc[aă]|банк|bank)[^\S\n]*:?[^\S\n]*([^\n]+)`}},
				{Name: "iban", Patterns: []string{`iban[^\S\n]*:?[^\S\n]*([A-Z]{2}[0-9]{2}[A-Z0-9]{4}[0-9]{7,})`}},
			},
			Required: []string{"number", "date", "payer", "payee", "amount", "purpose"},
		},
		{
			ID:         "chitanta",
			NameRO:     "Chitanță",
			NameRU:     "Квитанция",
			FiscalCode: "CHIT",
			KeywordsRO: []string{"chitanță", "chitanta", "primire", "confirmare"},
			KeywordsRU: []string{"квитанция", "получение", "подтверждение", "оплачено"},
			Fields: []FieldSpec{
				{Name: "number", Patterns: numberPatterns},
				{Name: "date", Patterns: datePatterns},
				{Name: "payer", Patterns: []string{`(?:plătitor|плательщик|payer)[^\S\n]*:?[^\S\n]*([^\n]+)`}},
				{Name: "amount", Patterns: amountPatterns},
				{Name: "purpose", Patterns: []string{`(?:destinația|назначение|purpose)[^\S\n]*:?[^\S\n]*([^\n]+)`}},
			},
			Required: []string{"number", "date", "amount"},
		},
	}
}
