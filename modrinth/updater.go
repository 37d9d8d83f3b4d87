package modrinth

import (
	"errors"

	"github.com/mitchellh/mapstructure"
)

// UpdateData is the [update.modrinth] table of a packwiz metafile
type UpdateData struct {
	ProjectID        string `mapstructure:"mod-id"`
	InstalledVersion string `mapstructure:"version"`
}

// ParseUpdateData decodes the modrinth update table of a packwiz metafile
func ParseUpdateData(updateUnparsed map[string]interface{}) (UpdateData, error) {
	var updateData UpdateData
	if err := mapstructure.Decode(updateUnparsed, &updateData); err != nil {
		return UpdateData{}, err
	}
	if updateData.ProjectID == "" || updateData.InstalledVersion == "" {
		return UpdateData{}, errors.New("modrinth update data needs both mod-id and version")
	}
	return updateData, nil
}
