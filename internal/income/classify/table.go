package classify

// row binds one external (type, description, qualifier) triple to its class
// and normalized code. Qualifier "" is the plain type+description row.
type row struct {
	incomeType  string
	description string
	qualifier   string
	class       IncomeClass
	code        DescriptionCode
}

// table is the classification code table. It is a representative cut of the
// external code set, not the exhaustive enumeration; unlisted codes resolve
// to ClassUnmapped. The (class, code) pair is unique per row so the reverse
// mapping can recover the external triple.
var table = []row{
	// Wage income.
	{TypeWage, "fastloenn", "", ClassEmployment, "FASTLOENN"},
	{TypeWage, "timeloenn", "", ClassEmployment, "TIMELOENN"},
	{TypeWage, "fastTillegg", "", ClassEmployment, "FAST_TILLEGG"},
	{TypeWage, "uregelmessigeTilleggKnyttetTilArbeidetTid", "", ClassEmployment, "UREGELMESSIGE_TILLEGG_ARBEIDET_TID"},
	{TypeWage, "uregelmessigeTilleggKnyttetTilIkkeArbeidetTid", "", ClassEmployment, "UREGELMESSIGE_TILLEGG_IKKE_ARBEIDET_TID"},
	{TypeWage, "helligdagstillegg", "", ClassEmployment, "HELLIGDAGSTILLEGG"},
	{TypeWage, "overtidsgodtgjoerelse", "", ClassEmployment, "OVERTIDSGODTGJOERELSE"},
	{TypeWage, "feriepenger", "", ClassEmployment, "FERIEPENGER"},
	{TypeWage, "bonus", "", ClassEmployment, "BONUS"},
	{TypeWage, "sluttvederlag", "", ClassEmployment, "SLUTTVEDERLAG"},
	{TypeWage, "honorarAkkordProsentProvisjon", "", ClassEmployment, "HONORAR_AKKORD_PROSENT_PROVISJON"},
	{TypeWage, "trekkILoennForFerie", "", ClassEmployment, "TREKK_I_LOENN_FOR_FERIE"},
	{TypeWage, "styrehonorarOgGodtgjoerelseVerv", "", ClassEmployment, "STYREHONORAR_OG_GODTGJOERELSE_VERV"},
	{TypeWage, "kommunalOmsorgsloennOgFosterhjemsgodtgjoerelse", "", ClassEmployment, "KOMMUNAL_OMSORGSLOENN_OG_FOSTERHJEMSGODTGJOERELSE"},
	{TypeWage, "skattepliktigDelForsikringer", "", ClassEmployment, "SKATTEPLIKTIG_DEL_FORSIKRINGER"},
	{TypeWage, "opsjoner", "", ClassEmployment, "OPSJONER"},
	{TypeWage, "annet", "", ClassEmployment, "ANNET"},

	// Wage income earned as crew on a fishing vessel.
	{TypeWage, "fastloenn", QualifierFishingCrew, ClassFishing, "FASTLOENN"},
	{TypeWage, "timeloenn", QualifierFishingCrew, ClassFishing, "TIMELOENN"},
	{TypeWage, "fastTillegg", QualifierFishingCrew, ClassFishing, "FAST_TILLEGG"},
	{TypeWage, "helligdagstillegg", QualifierFishingCrew, ClassFishing, "HELLIGDAGSTILLEGG"},
	{TypeWage, "overtidsgodtgjoerelse", QualifierFishingCrew, ClassFishing, "OVERTIDSGODTGJOERELSE"},
	{TypeWage, "feriepenger", QualifierFishingCrew, ClassFishing, "FERIEPENGER"},
	{TypeWage, "bonus", QualifierFishingCrew, ClassFishing, "BONUS"},
	{TypeWage, "sluttvederlag", QualifierFishingCrew, ClassFishing, "SLUTTVEDERLAG"},
	{TypeWage, "annet", QualifierFishingCrew, ClassFishing, "ANNET"},

	// Wage income under an employment scheme.
	{TypeWage, "fastloenn", QualifierEmploymentScheme, ClassSchemePay, "FASTLOENN"},
	{TypeWage, "timeloenn", QualifierEmploymentScheme, ClassSchemePay, "TIMELOENN"},
	{TypeWage, "bonus", QualifierEmploymentScheme, ClassSchemePay, "BONUS"},
	{TypeWage, "annet", QualifierEmploymentScheme, ClassSchemePay, "ANNET"},

	// Business income from fishing.
	{TypeBusiness, "lottKunTrygdeavgift", "", ClassFishing, "LOTT_KUN_TRYGDEAVGIFT"},
	{TypeBusiness, "vederlag", "", ClassFishing, "VEDERLAG"},

	// Public benefits.
	{TypePublicBenefit, "dagpengerVedArbeidsloeshet", "", ClassUnemploymentBenefit, "DAGPENGER_VED_ARBEIDSLOESHET"},
	{TypePublicBenefit, "dagpengerTilFiskerSomBareHarHyre", "", ClassUnemploymentBenefitFishing, "DAGPENGER_TIL_FISKER_SOM_BARE_HAR_HYRE"},
	{TypePublicBenefit, "sykepenger", "", ClassSickPay, "SYKEPENGER"},
	{TypePublicBenefit, "sykepengerTilFiskerSomBareHarHyre", "", ClassSickPayFishing, "SYKEPENGER_TIL_FISKER_SOM_BARE_HAR_HYRE"},
	{TypePublicBenefit, "foreldrepenger", "", ClassParentalBenefit, "FORELDREPENGER"},
	{TypePublicBenefit, "svangerskapspenger", "", ClassPregnancyBenefit, "SVANGERSKAPSPENGER"},
	{TypePublicBenefit, "omsorgspenger", "", ClassCareBenefit, "OMSORGSPENGER"},
	{TypePublicBenefit, "pleiepenger", "", ClassAttendanceBenefit, "PLEIEPENGER"},
	{TypePublicBenefit, "opplaeringspenger", "", ClassTrainingBenefit, "OPPLAERINGSPENGER"},

	// Benefits reported as business income keep their benefit class.
	{TypeBusiness, "dagpengerVedArbeidsloeshet", "", ClassUnemploymentBenefit, "NAERING_DAGPENGER_VED_ARBEIDSLOESHET"},
	{TypeBusiness, "dagpengerTilFisker", "", ClassUnemploymentBenefitFishing, "NAERING_DAGPENGER_TIL_FISKER"},
	{TypeBusiness, "sykepenger", "", ClassSickPay, "NAERING_SYKEPENGER"},
	{TypeBusiness, "sykepengerTilFisker", "", ClassSickPayFishing, "NAERING_SYKEPENGER_TIL_FISKER"},
}
