package rules

// Catalog IDs of the built-in predicates.
const (
	ProvideFormatStringForMeasures  = "PROVIDE_FORMAT_STRING_FOR_MEASURES"
	UseTheDivideFunctionForDivision = "USE_THE_DIVIDE_FUNCTION_FOR_DIVISION"
	AvoidUsingTheIfErrorFunction    = "AVOID_USING_THE_IFERROR_FUNCTION"
	HideForeignKeys                 = "HIDE_FOREIGN_KEYS"
	DaxColumnsFullyQualified        = "DAX_COLUMNS_FULLY_QUALIFIED"
	AvoidFloatingPointDataTypes     = "AVOID_FLOATING_POINT_DATA_TYPES"
)
