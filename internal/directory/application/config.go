package application

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ContractDefaults are the utility unit prices applied to new contracts
// when the request leaves them unset.
type ContractDefaults struct {
	ElectricityPrice float64 `yaml:"electricity_price"`
	WaterPrice       float64 `yaml:"water_price"`
	InternetPrice    float64 `yaml:"internet_price"`
	GeneralPrice     float64 `yaml:"general_price"`
}

// LoadContractDefaults loads contract price defaults from env, with an
// optional YAML override file named by BILLING_CONFIG.
func LoadContractDefaults() (ContractDefaults, error) {
	defaults := ContractDefaults{
		ElectricityPrice: getenvFloatDefault("DEFAULT_ELECTRICITY_PRICE", 3500),
		WaterPrice:       getenvFloatDefault("DEFAULT_WATER_PRICE", 80000),
		InternetPrice:    getenvFloatDefault("DEFAULT_INTERNET_PRICE", 100000),
		GeneralPrice:     getenvFloatDefault("DEFAULT_GENERAL_PRICE", 100000),
	}
	if path := os.Getenv("BILLING_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return defaults, err
		}
		var file struct {
			ContractDefaults ContractDefaults `yaml:"contract_defaults"`
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return defaults, err
		}
		defaults = mergeDefaults(defaults, file.ContractDefaults)
	}
	return defaults, nil
}

func mergeDefaults(base, override ContractDefaults) ContractDefaults {
	if override.ElectricityPrice != 0 {
		base.ElectricityPrice = override.ElectricityPrice
	}
	if override.WaterPrice != 0 {
		base.WaterPrice = override.WaterPrice
	}
	if override.InternetPrice != 0 {
		base.InternetPrice = override.InternetPrice
	}
	if override.GeneralPrice != 0 {
		base.GeneralPrice = override.GeneralPrice
	}
	return base
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
